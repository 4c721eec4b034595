package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/internal/cart/usecase/command"
	"github.com/tair/ministore/internal/storefront/session"
)

type cartView struct {
	Items      []domain.Item `json:"items"`
	TotalItems int           `json:"totalItems"`
	TotalPrice int64         `json:"totalPrice"`
}

func viewCart(s *session.Session) cartView {
	items := s.Cart.Items()
	return cartView{
		Items:      items,
		TotalItems: domain.TotalItems(items),
		TotalPrice: domain.TotalPrice(items),
	}
}

// GetCart handles GET /api/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request, s *session.Session) {
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    viewCart(s),
	})
}

// ClearCart handles DELETE /api/cart
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Cart.ClearCart(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cart cleared",
		Data:    viewCart(s),
	})
}

// AddCartItem handles POST /api/cart/items
func (h *StorefrontHandler) AddCartItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	product, ok := h.catalog.FindByID(req.ProductID)
	if !ok {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Product not found",
		})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := s.Cart.AddToCart(r.Context(), product, quantity); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Added to cart",
		Data:    viewCart(s),
	})
}

// UpdateCartItem handles PATCH /api/cart/items/{id}
func (h *StorefrontHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.Cart.UpdateQuantity(r.Context(), mux.Vars(r)["id"], req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    viewCart(s),
	})
}

// RemoveCartItem handles DELETE /api/cart/items/{id}
func (h *StorefrontHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Cart.RemoveFromCart(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    viewCart(s),
	})
}

// Checkout handles POST /api/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd := command.CheckoutCommand{Name: req.Name, Email: req.Email, Address: req.Address}
	if u := s.Auth.User(); u != nil {
		cmd.Username = u.Username
	}

	order, err := s.Checkout.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.ordersPlaced.Inc()
	h.orderRevenue.Add(float64(order.TotalPrice))

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order placed",
		Data:    order,
	})
}
