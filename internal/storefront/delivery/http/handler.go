package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/ministore/internal/auth"
	"github.com/tair/ministore/internal/catalog"
	"github.com/tair/ministore/internal/catalog/search"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/internal/storefront/session"
	"github.com/tair/ministore/pkg/apperror"
	"github.com/tair/ministore/pkg/logger"
)

// StorefrontHandler handles HTTP requests for the storefront
type StorefrontHandler struct {
	catalog  *catalog.Store
	cache    *search.Cache
	sessions *session.Registry
	tokens   *SessionTokens
	backend  storage.Store
	limiter  *RateLimiter

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	activeSessions prometheus.GaugeFunc
	ordersPlaced   prometheus.Counter
	orderRevenue   prometheus.Counter
}

// NewStorefrontHandler creates a new storefront handler. Metrics are
// registered with registerer.
func NewStorefrontHandler(
	catalogStore *catalog.Store,
	cache *search.Cache,
	sessions *session.Registry,
	tokens *SessionTokens,
	backend storage.Store,
	registerer prometheus.Registerer,
) *StorefrontHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Total number of requests to the storefront",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_request_duration_seconds",
			Help:    "Duration of storefront requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	activeSessions := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of storefront sessions held in memory",
		},
		func() float64 { return float64(sessions.Len()) },
	)

	ordersPlaced := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed at checkout",
		},
	)

	orderRevenue := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_order_revenue_total",
			Help: "Sum of order totals placed at checkout, in rupiah",
		},
	)

	registerer.MustRegister(requestCounter, requestLatency, activeSessions, ordersPlaced, orderRevenue)

	return &StorefrontHandler{
		catalog:        catalogStore,
		cache:          cache,
		sessions:       sessions,
		tokens:         tokens,
		backend:        backend,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		activeSessions: activeSessions,
		ordersPlaced:   ordersPlaced,
		orderRevenue:   orderRevenue,
	}
}

// WithRateLimiter guards the sign-in and admin unlock routes with rl.
// It must be called before RegisterRoutes.
func (h *StorefrontHandler) WithRateLimiter(rl *RateLimiter) *StorefrontHandler {
	h.limiter = rl
	return h
}

// limited applies the rate limiter, if any, to next.
func (h *StorefrontHandler) limited(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Middleware(next).ServeHTTP
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *StorefrontHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(sw.Status())).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// sessionHandlerFunc is a handler that runs with the caller's session locked.
type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, s *session.Session)

// withSession resolves the caller's session from the token header or cookie,
// opening a new one when there is none, and serialises the request on it.
func (h *StorefrontHandler) withSession(next sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := r.Header.Get(SessionHeader)
		if token == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				token = c.Value
			}
		}

		var sid string
		if token != "" {
			id, err := h.tokens.Parse(token)
			if err != nil {
				logger.Debug(ctx).Err(err).Msg("Ignoring invalid session token")
			}
			sid = id
		}

		s, created := h.sessions.Open(ctx, sid)
		if created {
			signed, err := h.tokens.Issue(s.ID)
			if err != nil {
				logger.Error(ctx).Err(err).Msg("Failed to issue session token")
				respondJSON(w, http.StatusInternalServerError, Response{
					Success: false,
					Error:   "Failed to start session",
				})
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    signed,
				Path:     "/",
				MaxAge:   int(h.tokens.TTL().Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, signed)
		}

		_ = s.Do(func() error {
			next(w, r, s)
			return nil
		})
	}
}

// RegisterRoutes registers all storefront routes
func (h *StorefrontHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	// Catalog (no session needed)
	api.HandleFunc("/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	api.HandleFunc("/products/{slug}", h.metricsMiddleware("/api/products/{slug}", h.GetProduct)).Methods("GET")
	api.HandleFunc("/tags", h.metricsMiddleware("/api/tags", h.ListTags)).Methods("GET")

	// Cart and checkout
	api.HandleFunc("/cart", h.metricsMiddleware("/api/cart", h.withSession(h.GetCart))).Methods("GET")
	api.HandleFunc("/cart", h.metricsMiddleware("/api/cart", h.withSession(h.ClearCart))).Methods("DELETE")
	api.HandleFunc("/cart/items", h.metricsMiddleware("/api/cart/items", h.withSession(h.AddCartItem))).Methods("POST")
	api.HandleFunc("/cart/items/{id}", h.metricsMiddleware("/api/cart/items/{id}", h.withSession(h.UpdateCartItem))).Methods("PATCH")
	api.HandleFunc("/cart/items/{id}", h.metricsMiddleware("/api/cart/items/{id}", h.withSession(h.RemoveCartItem))).Methods("DELETE")
	api.HandleFunc("/checkout", h.metricsMiddleware("/api/checkout", h.withSession(h.Checkout))).Methods("POST")

	// Sign-in and profile
	api.HandleFunc("/auth", h.metricsMiddleware("/api/auth", h.withSession(h.AuthStatus))).Methods("GET")
	api.HandleFunc("/auth/login", h.metricsMiddleware("/api/auth/login", h.limited(h.withSession(h.Login)))).Methods("POST")
	api.HandleFunc("/auth/register", h.metricsMiddleware("/api/auth/register", h.limited(h.withSession(h.Register)))).Methods("POST")
	api.HandleFunc("/auth/logout", h.metricsMiddleware("/api/auth/logout", h.withSession(h.Logout))).Methods("POST")
	api.HandleFunc("/auth/error", h.metricsMiddleware("/api/auth/error", h.withSession(h.ClearAuthError))).Methods("DELETE")
	api.HandleFunc("/profile", h.metricsMiddleware("/api/profile", h.withSession(h.GetProfile))).Methods("GET")
	api.HandleFunc("/profile", h.metricsMiddleware("/api/profile", h.withSession(h.UpdateProfile))).Methods("PATCH")

	// Catalog management behind the admin gate
	api.HandleFunc("/admin/unlock", h.metricsMiddleware("/api/admin/unlock", h.limited(h.withSession(h.UnlockAdmin)))).Methods("POST")
	api.HandleFunc("/admin/lock", h.metricsMiddleware("/api/admin/lock", h.withSession(h.LockAdmin))).Methods("POST")
	api.HandleFunc("/admin/products", h.metricsMiddleware("/api/admin/products", h.withSession(h.ListAdminProducts))).Methods("GET")
	api.HandleFunc("/admin/products", h.metricsMiddleware("/api/admin/products", h.withSession(h.SaveProduct))).Methods("POST")
	api.HandleFunc("/admin/products/{id}", h.metricsMiddleware("/api/admin/products/{id}", h.withSession(h.DeleteProduct))).Methods("DELETE")

	// Theme
	api.HandleFunc("/theme", h.metricsMiddleware("/api/theme", h.withSession(h.GetTheme))).Methods("GET")
	api.HandleFunc("/theme", h.metricsMiddleware("/api/theme", h.withSession(h.SetTheme))).Methods("PUT")
	api.HandleFunc("/theme/toggle", h.metricsMiddleware("/api/theme/toggle", h.withSession(h.ToggleTheme))).Methods("POST")
}

// RegisterHealthCheck registers health check endpoint
func (h *StorefrontHandler) RegisterHealthCheck(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := storage.Ping(r.Context(), h.backend); err != nil {
			logger.Error(r.Context()).Err(err).Msg("Storage health check failed")
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Storage unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Storefront is healthy",
		})
	}).Methods("GET")
}

// respondError maps domain errors onto HTTP statuses.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case apperror.IsValidation(err):
		status, message = http.StatusBadRequest, apperror.UserMessage(err)
	case errors.Is(err, catalog.ErrProductNotFound):
		status, message = http.StatusNotFound, "Product not found"
	case errors.Is(err, catalog.ErrReadOnly):
		status, message = http.StatusForbidden, "Catalog is read-only"
	case errors.Is(err, auth.ErrWrongAdminPassword):
		status, message = http.StatusForbidden, "Wrong admin password"
	case errors.Is(err, auth.ErrAdminLocked):
		status, message = http.StatusForbidden, "Admin access required"
	case errors.Is(err, auth.ErrNotAuthenticated):
		status, message = http.StatusUnauthorized, "Login required"
	default:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}

	respondJSON(w, status, Response{Success: false, Error: message})
}

// MaxBodyBytes bounds a JSON request body. Profile updates carry the avatar
// inline as a data URL, which sets the size.
const MaxBodyBytes = 2 << 20

// decodeJSON reads a bounded JSON body into dst, answering 400 or 413 itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, Response{
				Success: false,
				Error:   "Request body too large",
			})
			return false
		}
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return false
	}
	return true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
