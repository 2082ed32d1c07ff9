package middleware

import (
	"net/http"
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/response"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
)

// GuardConfig carries the navigation targets the guard answers with.
type GuardConfig struct {
	LoginPath   string
	LandingPath string
}

// Guard gates every navigation request. Decisions apply in a fixed
// order: public paths pass untouched, a store still resolving answers
// 503 so the client retries, anonymous browsers are redirected to login,
// and authenticated ones pass when the path demands no permission or the
// user holds at least one of the demanded set. A session past its
// credential expiry counts as anonymous here.
func Guard(table *authz.Table, cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if table.Public(path) {
				observability.RecordGuardDecision("public")
				next.ServeHTTP(w, r)
				return
			}

			store, ok := StoreFromContext(r.Context())
			if !ok {
				observability.RecordGuardDecision("no_store")
				response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
				return
			}
			if store.Loading() {
				observability.RecordGuardDecision("loading")
				response.Loading(w, r)
				return
			}
			sess := store.Session()
			if sess == nil {
				observability.RecordGuardDecision("redirect")
				http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
				return
			}
			if sess.Expired(time.Now()) {
				observability.RecordGuardDecision("expired")
				http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
				return
			}

			required := table.RequiredPermissions(path)
			if len(required) == 0 {
				observability.RecordGuardDecision("granted")
				next.ServeHTTP(w, r)
				return
			}
			if authz.HasAny(sess.User.Permissions, required) {
				observability.RecordGuardDecision("granted")
				next.ServeHTTP(w, r)
				return
			}

			observability.RecordGuardDecision("denied")
			observability.Audit(r, "guard.denied", "path", path, "user_id", sess.User.ID)
			response.Error(w, r, http.StatusForbidden, "ACCESS_DENIED", "missing permission for this section", map[string]any{
				"required": required,
				"landing":  cfg.LandingPath,
			})
		})
	}
}
