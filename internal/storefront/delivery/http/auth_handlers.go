package http

import (
	"context"
	"net/http"

	authdomain "github.com/tair/ministore/internal/auth/domain"
	"github.com/tair/ministore/internal/storefront/session"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authStatus struct {
	Authenticated bool             `json:"authenticated"`
	User          *authdomain.User `json:"user,omitempty"`
	Error         string           `json:"error,omitempty"`
	Admin         bool             `json:"admin"`
}

// AuthStatus handles GET /api/auth
func (h *StorefrontHandler) AuthStatus(w http.ResponseWriter, r *http.Request, s *session.Session) {
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: authStatus{
			Authenticated: s.Auth.IsAuthenticated(),
			User:          s.Auth.User(),
			Error:         s.Auth.Error(),
			Admin:         s.Admin.IsAdmin(),
		},
	})
}

// Login handles POST /api/auth/login
func (h *StorefrontHandler) Login(w http.ResponseWriter, r *http.Request, s *session.Session) {
	h.signIn(w, r, s.Auth.Login, http.StatusOK)
}

// Register handles POST /api/auth/register
func (h *StorefrontHandler) Register(w http.ResponseWriter, r *http.Request, s *session.Session) {
	h.signIn(w, r, s.Auth.Register, http.StatusCreated)
}

func (h *StorefrontHandler) signIn(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, username, password string) (*authdomain.User, error),
	status int,
) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := fn(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, status, Response{
		Success: true,
		Message: "Signed in",
		Data:    user,
	})
}

// Logout handles POST /api/auth/logout
func (h *StorefrontHandler) Logout(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Auth.Logout(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Signed out",
	})
}

// ClearAuthError handles DELETE /api/auth/error
func (h *StorefrontHandler) ClearAuthError(w http.ResponseWriter, r *http.Request, s *session.Session) {
	s.Auth.ClearError()
	respondJSON(w, http.StatusOK, Response{Success: true})
}

// GetProfile handles GET /api/profile
func (h *StorefrontHandler) GetProfile(w http.ResponseWriter, r *http.Request, s *session.Session) {
	user := s.Auth.User()
	if user == nil {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Login required",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    user,
	})
}

// UpdateProfile handles PATCH /api/profile
func (h *StorefrontHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req authdomain.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.Auth.UpdateProfile(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Profile updated",
		Data:    user,
	})
}
