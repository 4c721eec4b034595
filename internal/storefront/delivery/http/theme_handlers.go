package http

import (
	"net/http"

	"github.com/tair/ministore/internal/storefront/session"
	"github.com/tair/ministore/internal/theme"
)

type themeView struct {
	Mode   theme.Mode `json:"mode"`
	IsDark bool       `json:"isDark"`
}

func viewTheme(s *session.Session) themeView {
	return themeView{Mode: s.Theme.Mode(), IsDark: s.Theme.IsDark()}
}

// GetTheme handles GET /api/theme
func (h *StorefrontHandler) GetTheme(w http.ResponseWriter, r *http.Request, s *session.Session) {
	respondJSON(w, http.StatusOK, Response{Success: true, Data: viewTheme(s)})
}

// SetTheme handles PUT /api/theme
func (h *StorefrontHandler) SetTheme(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := theme.ParseMode(req.Mode)
	if err == nil {
		err = s.Theme.Set(r.Context(), mode)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: viewTheme(s)})
}

// ToggleTheme handles POST /api/theme/toggle
func (h *StorefrontHandler) ToggleTheme(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if _, err := s.Theme.Toggle(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: viewTheme(s)})
}
