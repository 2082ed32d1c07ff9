package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/http/middleware"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/response"
	"github.com/sandeepkv93/storefront-session-gateway/internal/session"
)

// SessionHandler exposes the resolved session to the client shell: who
// is signed in, which store the UI is scoped to, and that store's
// inventory snapshot.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
		return
	}
	if store.Loading() {
		response.Loading(w, r)
		return
	}
	sess := store.Session()
	if sess == nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "no active session", nil)
		return
	}
	response.JSONScoped(w, r, http.StatusOK, map[string]any{
		"session": sess,
		"expired": sess.Expired(time.Now()),
	}, store.SelectedStore())
}

type selectStoreRequest struct {
	StoreID string `json:"store_id"`
}

func (h *SessionHandler) SelectStore(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
		return
	}
	var req selectStoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil || req.StoreID == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be JSON with a store_id field", nil)
		return
	}

	err := store.SetSelectedStore(r.Context(), req.StoreID)
	switch {
	case errors.Is(err, session.ErrNoSession):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "no active session", nil)
		return
	case errors.Is(err, session.ErrStoreNotInCompany):
		response.Error(w, r, http.StatusUnprocessableEntity, "STORE_NOT_IN_COMPANY", "store does not belong to your company", map[string]string{"store_id": req.StoreID})
		return
	case err != nil:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not switch store", nil)
		return
	}
	response.JSONScoped(w, r, http.StatusOK, map[string]any{"selected_store": store.SelectedStore()}, store.SelectedStore())
}

func (h *SessionHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "SESSION_UNRESOLVED", "session store missing from request", nil)
		return
	}
	if store.Session() == nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "no active session", nil)
		return
	}
	response.JSONScoped(w, r, http.StatusOK, map[string]any{
		"store_id": store.SelectedStore(),
		"items":    store.Inventory(),
	}, store.SelectedStore())
}
