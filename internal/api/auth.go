package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/rest"
)

const sessionCookie = "session"

type authClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64) (string, error) {
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

// authMiddleware resolves the signed-in user from the session cookie.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			respondError(w, http.StatusUnauthorized, "missing session cookie")
			return
		}
		token, err := jwt.ParseWithClaims(cookie.Value, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid session claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// storeMiddleware resolves the active store from the x-store-id header
// and rejects identifiers the signed-in user is not a member of, so the
// header is never trusted blindly.
func (h *Handler) storeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(rest.StoreIDHeader)
		if raw == "" {
			respondError(w, http.StatusBadRequest, "x-store-id header is required")
			return
		}
		storeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || storeID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid x-store-id header")
			return
		}
		userID := r.Context().Value(ctxUserID).(int64)
		var member int
		if err := h.db.Get(&member, `SELECT COUNT(*) FROM store_users WHERE store_id = ? AND user_id = ?`, storeID, userID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to verify store membership")
			return
		}
		if member == 0 {
			respondError(w, http.StatusForbidden, "user is not a member of this store")
			return
		}
		ctx := context.WithValue(r.Context(), ctxStoreID, storeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if len(req.Password) < 4 {
		respondError(w, http.StatusBadRequest, "password must be at least 4 characters")
		return
	}
	if req.Role == "" {
		req.Role = "admin"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	res, err := h.db.Exec(`INSERT INTO users (name, email, password, role) VALUES (?, ?, ?, ?)`,
		req.Name, strings.ToLower(req.Email), hashed, req.Role)
	if err != nil {
		respondError(w, http.StatusConflict, "email already exists")
		return
	}
	userID, _ := res.LastInsertId()

	respondJSON(w, http.StatusCreated, domain.User{
		ID:    userID,
		Name:  req.Name,
		Email: strings.ToLower(req.Email),
		Role:  req.Role,
	})
}

// login accepts a form-encoded username/password pair and establishes
// the session cookie.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("username")))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var user domain.User
	err := h.db.Get(&user, `SELECT id, name, email, password, role FROM users WHERE email = ?`, email)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	user.Password = ""
	respondJSON(w, http.StatusOK, user)
}

// me returns the current identity record including store memberships.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(ctxUserID).(int64)

	var user domain.User
	if err := h.db.Get(&user, `SELECT id, name, email, role, created_at FROM users WHERE id = ?`, userID); err != nil {
		respondError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	if err := h.db.Select(&user.Stores, `SELECT s.id, s.name, s.cnpj, s.address, s.created_at
                FROM stores s
                JOIN store_users su ON su.store_id = s.id
                WHERE su.user_id = ?
                ORDER BY s.id`, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stores")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
