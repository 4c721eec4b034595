package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/ministore/internal/catalog/search"
)

// ListProducts handles GET /api/products?q=&tag=&sort=&page=
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := search.DefaultParams().
		WithSearch(q.Get("q")).
		WithSort(search.ParseSortKey(q.Get("sort")))
	if tag := q.Get("tag"); tag != "" {
		params = params.WithTag(tag)
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params = params.WithPage(page)
	}

	products, version := h.catalog.Snapshot()
	result := h.cache.Run(products, version, params)

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// GetProduct handles GET /api/products/{slug}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.FindBySlug(mux.Vars(r)["slug"])
	if !ok {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Product not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    product,
	})
}

// ListTags handles GET /api/tags
func (h *StorefrontHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    h.catalog.Tags(),
	})
}
