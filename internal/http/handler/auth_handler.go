package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sandeepkv93/storefront-session-gateway/internal/http/middleware"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/response"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
	"github.com/sandeepkv93/storefront-session-gateway/internal/session"
	"github.com/sandeepkv93/storefront-session-gateway/internal/token"
)

// AuthHandler drives the session lifecycle of one browser: explicit
// login with a fresh credential, silent refresh, and logout.
type AuthHandler struct {
	registry          *session.Registry
	sessionCookieName string
}

func NewAuthHandler(registry *session.Registry, sessionCookieName string) *AuthHandler {
	return &AuthHandler{registry: registry, sessionCookieName: sessionCookieName}
}

type loginRequest struct {
	Credential string `json:"credential"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be JSON with a credential field", nil)
		return
	}

	sess, err := store.Login(r.Context(), req.Credential)
	switch {
	case errors.Is(err, token.ErrMalformedCredential):
		response.Error(w, r, http.StatusBadRequest, "MALFORMED_CREDENTIAL", "credential is not decodable", nil)
		return
	case errors.Is(err, session.ErrSuperseded):
		response.Error(w, r, http.StatusConflict, "LOGIN_SUPERSEDED", "a newer login attempt won", nil)
		return
	case err != nil:
		response.Error(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "could not resolve the session", nil)
		return
	}

	observability.Audit(r, "auth.login", "user_id", sess.User.ID)
	response.JSONScoped(w, r, http.StatusOK, map[string]any{"session": sess}, store.SelectedStore())
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
		return
	}
	authenticated := store.SilentRefresh(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]any{"authenticated": authenticated})
}

// Logout clears the browser's session unconditionally and forgets its
// registry entry, so the next request starts from a clean store.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
		return
	}
	store.Logout(r.Context())
	if id, ok := middleware.SessionIDFromContext(r.Context()); ok {
		h.registry.Drop(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	observability.Audit(r, "auth.logout")
	response.JSON(w, r, http.StatusOK, map[string]any{"authenticated": false})
}
