// Package session owns the authenticated user identity and the active
// store selection. It is constructed once at process start and injected
// into every component that needs session context; only the active
// store identifier is persisted across restarts, identity is
// re-validated against the server on every startup.
package session

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"sync"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/rest"
	"github.com/FabricioIaronka/store-manager/internal/state"
)

type Session struct {
	api   *rest.Client
	state state.Store

	mu            sync.Mutex
	user          *domain.User
	activeStoreID string
	loading       bool
}

func New(api *rest.Client, st state.Store) *Session {
	return &Session{api: api, state: st, loading: true}
}

// Init restores the persisted store selection and asks the server
// whether a session cookie is still valid. A failed check resolves
// silently to "not authenticated"; no error is surfaced.
func (s *Session) Init(ctx context.Context) {
	s.mu.Lock()
	s.activeStoreID = s.state.ActiveStoreID()
	s.mu.Unlock()

	var user domain.User
	err := s.api.Get(ctx, "/auth/me", &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.user = nil
	} else {
		s.user = &user
	}
	s.loading = false
}

// SignIn submits credentials and loads the identity record. When the
// user belongs to at least one store and none is active yet, the first
// store is selected and persisted. The caller routes on the returned
// user (zero stores means store creation, not the dashboard).
func (s *Session) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	if err := s.api.PostForm(ctx, "/auth/login", form, nil); err != nil {
		return nil, rest.ErrInvalidCredentials
	}

	var user domain.User
	if err := s.api.Get(ctx, "/auth/me", &user); err != nil {
		return nil, rest.ErrInvalidCredentials
	}

	s.mu.Lock()
	s.user = &user
	needsSelection := s.activeStoreID == "" && user.HasStores()
	s.mu.Unlock()

	if needsSelection {
		if err := s.SelectStore(strconv.FormatInt(user.Stores[0].ID, 10)); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// SignOut notifies the server best-effort and unconditionally clears
// local identity and the persisted store selection.
func (s *Session) SignOut(ctx context.Context) {
	if err := s.api.Post(ctx, "/auth/logout", struct{}{}, nil); err != nil {
		log.Printf("logout request failed: %v", err)
	}
	s.ExpireLocally()
}

// SelectStore sets the active store and persists the choice so a
// restart restores the same context. An empty id clears the selection.
// Membership is not validated locally; the server rejects a store the
// user does not belong to.
func (s *Session) SelectStore(id string) error {
	s.mu.Lock()
	s.activeStoreID = id
	s.mu.Unlock()
	return s.state.SetActiveStoreID(id)
}

// RefreshUser re-fetches the identity record, used after store creation
// or profile changes. If no store is active and the refreshed identity
// now has stores, the first one is selected.
func (s *Session) RefreshUser(ctx context.Context) error {
	var user domain.User
	if err := s.api.Get(ctx, "/auth/me", &user); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &user
	needsSelection := s.activeStoreID == "" && user.HasStores()
	s.mu.Unlock()

	if needsSelection {
		return s.SelectStore(strconv.FormatInt(user.Stores[0].ID, 10))
	}
	return nil
}

// ExpireLocally tears the session down without a server round-trip. It
// is wired as the 401 cutover hook of the rest client.
func (s *Session) ExpireLocally() {
	s.mu.Lock()
	s.user = nil
	s.activeStoreID = ""
	s.mu.Unlock()
	if err := s.state.SetActiveStoreID(""); err != nil {
		log.Printf("clearing persisted store selection failed: %v", err)
	}
}

func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) ActiveStoreID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeStoreID
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Loading reports whether the initial identity check is still pending.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
