package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/ministore/internal/catalog"
	"github.com/tair/ministore/internal/storefront/session"
)

// UnlockAdmin handles POST /api/admin/unlock
func (h *StorefrontHandler) UnlockAdmin(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.Admin.Unlock(r.Context(), req.Password); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Admin unlocked",
	})
}

// LockAdmin handles POST /api/admin/lock
func (h *StorefrontHandler) LockAdmin(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Admin.Lock(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Admin locked",
	})
}

// ListAdminProducts handles GET /api/admin/products?q=
func (h *StorefrontHandler) ListAdminProducts(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Admin.Require(); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    h.catalog.AdminSearch(r.URL.Query().Get("q")),
	})
}

// SaveProduct handles POST /api/admin/products. A body without id creates a product.
func (h *StorefrontHandler) SaveProduct(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Admin.Require(); err != nil {
		respondError(w, r, err)
		return
	}

	var form catalog.ProductForm
	if !decodeJSON(w, r, &form) {
		return
	}

	product, err := h.catalog.Upsert(r.Context(), form)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status, message := http.StatusOK, "Product updated"
	if form.ID == "" {
		status, message = http.StatusCreated, "Product created"
	}
	respondJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/admin/products/{id}
func (h *StorefrontHandler) DeleteProduct(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Admin.Require(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product deleted",
	})
}
