// Package api exposes the store over HTTP: a gorilla/mux router under the
// configured prefix, bearer-token guards per principal kind, and JSON handlers
// that delegate to the domain services.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safar/go-b2b-store/internal/admin"
	"github.com/safar/go-b2b-store/internal/auth"
	"github.com/safar/go-b2b-store/internal/cart"
	"github.com/safar/go-b2b-store/internal/catalog"
	"github.com/safar/go-b2b-store/internal/chat"
	"github.com/safar/go-b2b-store/internal/config"
	"github.com/safar/go-b2b-store/internal/metrics"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/safar/go-b2b-store/internal/quote"
)

// Store is everything the HTTP surface needs from a repository. Both the
// Postgres store and the in-memory store satisfy it.
type Store interface {
	auth.PrincipalStore
	catalog.ProductStore
	cart.Store
	quote.Store
	chat.Store
	admin.Store
	Ping(ctx context.Context) error
}

type Services struct {
	Gate    *auth.Gate
	Catalog *catalog.Service
	Cart    *cart.Engine
	Quotes  *quote.Engine
	Chat    *chat.Channel
	Admin   *admin.Service
	Health  func(ctx context.Context) error
}

func NewServices(store Store, authCfg config.AuthConfig) *Services {
	tokens := auth.NewJWTManager(authCfg.JWTSecret, authCfg.TokenTTL)
	return &Services{
		Gate:    auth.NewGate(store, tokens, authCfg.BcryptCost),
		Catalog: catalog.NewService(store),
		Cart:    cart.NewEngine(store),
		Quotes:  quote.NewEngine(store),
		Chat:    chat.NewChannel(store),
		Admin:   admin.NewService(store),
		Health:  store.Ping,
	}
}

type handler struct {
	svc *Services
}

// NewRouter builds the full HTTP handler: /metrics at the root and every
// API route under cfg.APIPrefix.
func NewRouter(cfg config.ServerConfig, svc *Services) http.Handler {
	h := &handler{svc: svc}

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.Use(metrics.HTTPMetricsMiddleware(metrics.HTTPRequestsTotal, metrics.HTTPRequestDuration))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(cfg.APIPrefix).Subrouter()

	api.HandleFunc("/", h.root).Methods(http.MethodGet)
	api.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api.HandleFunc("/ready", h.ready).Methods(http.MethodGet)

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/price-range", h.priceRange).Methods(http.MethodGet)
	api.HandleFunc("/products/featured", h.productShelf(svc.Catalog.Featured)).Methods(http.MethodGet)
	api.HandleFunc("/products/trending", h.productShelf(svc.Catalog.Trending)).Methods(http.MethodGet)
	api.HandleFunc("/products/deals", h.productShelf(svc.Catalog.Deals)).Methods(http.MethodGet)
	api.HandleFunc("/products/new-arrivals", h.productShelf(svc.Catalog.NewArrivals)).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.listCategories(false)).Methods(http.MethodGet)
	api.HandleFunc("/categories/with-counts", h.listCategories(true)).Methods(http.MethodGet)
	api.HandleFunc("/brands", h.listBrands(false)).Methods(http.MethodGet)
	api.HandleFunc("/brands/with-counts", h.listBrands(true)).Methods(http.MethodGet)

	api.HandleFunc("/users/register", h.register(models.KindCustomer)).Methods(http.MethodPost)
	api.HandleFunc("/users/login", h.login(models.KindCustomer)).Methods(http.MethodPost)
	api.HandleFunc("/dealers/register", h.register(models.KindDealer)).Methods(http.MethodPost)
	api.HandleFunc("/dealers/login", h.login(models.KindDealer)).Methods(http.MethodPost)
	api.HandleFunc("/admin/login", h.login(models.KindAdmin)).Methods(http.MethodPost)

	customerOnly := func(path string, fn http.HandlerFunc, method string) {
		api.Handle(path, h.requireKind(models.KindCustomer, fn)).Methods(method)
	}
	customerOnly("/users/profile", h.profile, http.MethodGet)
	customerOnly("/cart/add", h.addToCart, http.MethodPost)
	customerOnly("/cart", h.viewCart, http.MethodGet)
	customerOnly("/cart/item/{id}", h.removeFromCart, http.MethodDelete)
	customerOnly("/quotes", h.createQuote, http.MethodPost)
	customerOnly("/quotes", h.listMyQuotes, http.MethodGet)
	customerOnly("/chat/send", h.sendChat, http.MethodPost)
	customerOnly("/chat/{customer_id}", h.readChat, http.MethodGet)

	api.Handle("/dealers/profile", h.requireKind(models.KindDealer, h.profile)).Methods(http.MethodGet)

	adminOnly := func(path string, fn http.HandlerFunc, method string) {
		api.Handle(path, h.requireKind(models.KindAdmin, fn)).Methods(method)
	}
	adminOnly("/admin/profile", h.profile, http.MethodGet)
	adminOnly("/admin/dealers", h.listDealers, http.MethodGet)
	adminOnly("/admin/dealers/pending", h.listPendingDealers, http.MethodGet)
	adminOnly("/admin/dealers/{id}/approve", h.approveDealer, http.MethodPut)
	adminOnly("/admin/dealers/{id}/reject", h.rejectDealer, http.MethodPut)
	adminOnly("/admin/users", h.listUsers, http.MethodGet)
	adminOnly("/admin/stats", h.stats, http.MethodGet)
	adminOnly("/admin/products", h.adminListProducts, http.MethodGet)
	adminOnly("/admin/products", h.createProduct, http.MethodPost)
	adminOnly("/admin/products/{id}", h.getProduct, http.MethodGet)
	adminOnly("/admin/products/{id}", h.updateProduct, http.MethodPut)
	adminOnly("/admin/products/{id}", h.deleteProduct, http.MethodDelete)
	adminOnly("/admin/quotes", h.listAllQuotes, http.MethodGet)
	adminOnly("/admin/quotes/{id}/status", h.setQuoteStatus, http.MethodPut)
	adminOnly("/admin/quotes/{id}/pricing", h.setQuotePricing, http.MethodPut)
	adminOnly("/admin/quotes/{id}/send-email", h.sendQuoteEmail, http.MethodPost)
	adminOnly("/admin/chat/send", h.adminSendChat, http.MethodPost)
	adminOnly("/admin/chat/conversations", h.conversations, http.MethodGet)
	adminOnly("/admin/chat/{customer_id}/messages", h.readChat, http.MethodGet)
	adminOnly("/admin/chat/{customer_id}/quote-context", h.quoteContext, http.MethodGet)

	return corsMiddleware(cfg.CORSOrigins)(r)
}
