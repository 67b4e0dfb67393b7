// Package app wires the feature handlers into one HTTP router.
package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sufrahub/sufra/app/admin"
	"github.com/sufrahub/sufra/app/auth"
	cartapp "github.com/sufrahub/sufra/app/cart"
	"github.com/sufrahub/sufra/app/catalog"
	"github.com/sufrahub/sufra/app/categories"
	"github.com/sufrahub/sufra/app/checkout"
	"github.com/sufrahub/sufra/app/orders"
	"github.com/sufrahub/sufra/app/reviews"
	"github.com/sufrahub/sufra/internal/platform/metrics"
	"github.com/sufrahub/sufra/internal/session"
)

// Handlers collects every feature handler the router mounts.
type Handlers struct {
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Cart       *cartapp.CartHandler
	Checkout   *checkout.CheckoutHandler
	Orders     *orders.OrdersHandler
	Auth       *auth.AuthHandler
	Reviews    *reviews.ReviewsHandler
	Admin      *admin.AdminHandler
}

// NewRouter assembles the public, authenticated and admin route groups.
func NewRouter(h Handlers, sessions session.Store, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(session.Middleware(sessions))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Public routes.
	h.Catalog.Register(r)
	h.Categories.Register(r)
	h.Reviews.Register(r)
	h.Auth.Register(r)

	// Signed-in routes.
	r.Group(func(r chi.Router) {
		r.Use(session.RequireUser)
		r.Get("/auth/me", h.Auth.HandleMe)
		h.Cart.Register(r)
		h.Checkout.Register(r)
		h.Orders.Register(r)
		h.Reviews.RegisterAuthed(r)
	})

	// Back office.
	r.Route("/admin", func(r chi.Router) {
		r.Use(session.RequireAdmin)
		h.Categories.RegisterAdmin(r)
		h.Catalog.RegisterAdmin(r)
		h.Orders.RegisterAdmin(r)
		h.Reviews.RegisterAdmin(r)
		h.Admin.Register(r)
	})

	return r
}
