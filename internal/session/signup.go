package session

import (
	"context"
	"errors"

	"github.com/FabricioIaronka/store-manager/domain"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
)

// RegisterInput is step one of the registration wizard: the user's own
// account data.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// StoreInput is step two: the first store of the new account.
type StoreInput struct {
	Name string
	CNPJ string
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type createStoreRequest struct {
	Name string `json:"name"`
	CNPJ string `json:"cnpj"`
}

// Register runs the two-step wizard: validate locally, create the user
// account, sign in with the fresh credentials, then create the first
// store under the new session. Local validation failures never reach
// the network.
func (s *Session) Register(ctx context.Context, user RegisterInput, store StoreInput) (*domain.User, error) {
	if user.Password != user.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(user.Password) < 4 {
		return nil, ErrPasswordTooShort
	}

	payload := createUserRequest{
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Role:     "admin",
	}
	if err := s.api.Post(ctx, "/users/", payload, nil); err != nil {
		return nil, err
	}

	if _, err := s.SignIn(ctx, user.Email, user.Password); err != nil {
		return nil, err
	}

	if err := s.CreateStore(ctx, store.Name, store.CNPJ); err != nil {
		return nil, err
	}
	return s.User(), nil
}

// CreateStore registers a new store for the signed-in user and
// refreshes the identity record, which auto-selects the store when it
// is the first one.
func (s *Session) CreateStore(ctx context.Context, name, cnpj string) error {
	if err := s.api.Post(ctx, "/stores/", createStoreRequest{Name: name, CNPJ: cnpj}, nil); err != nil {
		return err
	}
	return s.RefreshUser(ctx)
}
