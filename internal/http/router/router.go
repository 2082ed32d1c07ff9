package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/handler"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/middleware"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/response"
	"github.com/sandeepkv93/storefront-session-gateway/internal/session"
)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	SessionHandler *handler.SessionHandler
	Registry       *session.Registry
	Table          *authz.Table
	CookieName     string
	LoginPath      string
	LandingPath    string
	Shell          http.Handler
	EnableOTelHTTP bool
}

// NewRouter wires the full request chain. Every route runs behind the
// session resolver; navigation paths additionally pass the guard, which
// serves the app shell once access is settled.
func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionResolver(dep.Registry, dep.CookieName))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/refresh", dep.AuthHandler.Refresh)
			r.Post("/logout", dep.AuthHandler.Logout)
		})

		r.Get("/me", dep.SessionHandler.Me)
		r.Put("/me/store", dep.SessionHandler.SelectStore)
		r.Get("/me/inventory", dep.SessionHandler.Inventory)

		shell := dep.Shell
		if shell == nil {
			shell = defaultShell()
		}
		guard := middleware.Guard(dep.Table, middleware.GuardConfig{
			LoginPath:   dep.LoginPath,
			LandingPath: dep.LandingPath,
		})
		r.With(guard).Handle("/*", shell)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

// defaultShell answers guarded navigation with the session context the
// client shell boots from.
func defaultShell() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"path": r.URL.Path}
		selected := ""
		if store, ok := middleware.StoreFromContext(r.Context()); ok {
			if sess := store.Session(); sess != nil {
				payload["session"] = sess
				selected = store.SelectedStore()
			}
		}
		response.JSONScoped(w, r, http.StatusOK, payload, selected)
	})
}
