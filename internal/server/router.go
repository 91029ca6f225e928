package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canteenrush/canteenrush/internal/handler"
	"github.com/canteenrush/canteenrush/internal/metrics"
	"github.com/canteenrush/canteenrush/internal/middleware"
)

// Routes bundles everything the router mounts.
type Routes struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	Index    *handler.Handler
	Health   *handler.HealthHandler
	Accounts *handler.AccountHandler
	Orders   *handler.OrderHandler
	Menus    *handler.MenuHandler
	Admin    *handler.AdminHandler

	Authenticator middleware.Authenticator
	RateLimit     middleware.RateLimitConfig
	CORS          middleware.CORSConfig
	Security      middleware.SecurityConfig
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(rt Routes) *chi.Mux {
	if rt.Metrics == nil {
		rt.Metrics = metrics.NewNoop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(rt.Logger, rt.Metrics))
	r.Use(middleware.Recoverer(rt.Logger))
	r.Use(middleware.Security(rt.Security))
	r.Use(middleware.CORS(rt.CORS))
	r.Use(middleware.MaxBodySize(rt.Security.MaxRequestBodySize))

	r.Get("/", rt.Index.Index)
	r.Get("/healthz", rt.Health.Healthz)
	r.Get("/readyz", rt.Health.Readyz)
	if rt.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", rt.MetricsHandler)
	}

	sessionCfg := middleware.SessionConfig{
		Logger:        rt.Logger,
		Authenticator: rt.Authenticator,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Post("/students", rt.Accounts.Register)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitLogin(rt.RateLimit))

			r.Post("/sessions/student", rt.Accounts.LoginStudent)
			r.Post("/sessions/vendor", rt.Accounts.LoginVendor)
			r.Post("/sessions/admin", rt.Accounts.LoginAdmin)
		})

		// Any signed-in role
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(sessionCfg))

			r.Delete("/sessions", rt.Accounts.Logout)
			r.Get("/vendors", rt.Menus.Vendors)
			r.Get("/vendors/{vendorID}/stats", rt.Menus.Stats)

			// Students
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStudent())

				r.Get("/vendors/{vendorID}/menu", rt.Menus.Menu)
				r.Get("/me", rt.Accounts.Me)
				r.Get("/me/orders", rt.Orders.MyOrders)
				r.Get("/me/notifications", rt.Orders.Notifications)
				r.With(middleware.RateLimitOrders(rt.RateLimit)).Post("/orders", rt.Orders.Place)
			})

			// Vendors
			r.Route("/vendor", func(r chi.Router) {
				r.Use(middleware.RequireVendor())

				r.Get("/orders", rt.Orders.Board)
				r.Get("/orders/lookup", rt.Orders.Lookup)
				r.Post("/orders/{orderID}/status", rt.Orders.Advance)
				r.Post("/orders/{orderID}/no-show", rt.Orders.NoShow)
				r.Get("/menu", rt.Menus.VendorMenu)
				r.Patch("/menu/{itemID}", rt.Menus.SetAvailability)
			})

			// Admins
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/users", rt.Admin.Users)
				r.Get("/orders", rt.Admin.Orders)
				r.Get("/orders/{orderID}/events", rt.Admin.OrderEvents)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(rt.Index.NotFound)
	r.MethodNotAllowed(rt.Index.MethodNotAllowed)

	return r
}
