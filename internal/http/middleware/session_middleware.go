package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
	"github.com/sandeepkv93/storefront-session-gateway/internal/session"
)

// SessionStore is the per-browser session surface the HTTP layer
// consumes. *session.Store satisfies it.
type SessionStore interface {
	Login(ctx context.Context, credential string) (*domain.Session, error)
	SilentRefresh(ctx context.Context) bool
	Logout(ctx context.Context)
	SetSelectedStore(ctx context.Context, storeID string) error
	Session() *domain.Session
	SelectedStore() string
	Inventory() []domain.InventoryItem
	HasPermission(p authz.Permission) bool
	Loading() bool
}

type contextKey string

const (
	storeContextKey     contextKey = "session_store"
	sessionIDContextKey contextKey = "gateway_session_id"
)

const refreshCookieName = "refresh_token"

// SessionResolver attaches the browser's session Store to the request
// context. A browser without a gateway cookie gets a fresh id; the first
// request under a given id triggers the registry's one-time silent
// refresh before the rest of the chain runs.
func SessionResolver(registry *session.Registry, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := readCookie(r, cookieName)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			store := registry.Resolve(r.Context(), id, readCookie(r, refreshCookieName))
			ctx := context.WithValue(r.Context(), storeContextKey, store)
			ctx = context.WithValue(ctx, sessionIDContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreFromContext returns the store attached by SessionResolver.
func StoreFromContext(ctx context.Context) (SessionStore, bool) {
	s, ok := ctx.Value(storeContextKey).(SessionStore)
	return s, ok
}

// WithStore injects a store directly, for handlers exercised outside the
// resolver chain.
func WithStore(ctx context.Context, store SessionStore) context.Context {
	return context.WithValue(ctx, storeContextKey, store)
}

// SessionIDFromContext returns the gateway session id for this browser.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok
}

func readCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
