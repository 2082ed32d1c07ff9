package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/middleware"
	"github.com/sandeepkv93/storefront-session-gateway/internal/session"
	"github.com/sandeepkv93/storefront-session-gateway/internal/token"
)

type stubStore struct {
	loading    bool
	session    *domain.Session
	selected   string
	inventory  []domain.InventoryItem
	loginErr   error
	selectErr  error
	loggedOut  bool
	refreshOut bool
}

func (s *stubStore) Login(_ context.Context, credential string) (*domain.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.session, nil
}

func (s *stubStore) SilentRefresh(context.Context) bool { return s.refreshOut }

func (s *stubStore) Logout(context.Context) {
	s.loggedOut = true
	s.session = nil
}

func (s *stubStore) SetSelectedStore(_ context.Context, storeID string) error {
	if s.selectErr != nil {
		return s.selectErr
	}
	s.selected = storeID
	return nil
}

func (s *stubStore) Session() *domain.Session          { return s.session }
func (s *stubStore) SelectedStore() string             { return s.selected }
func (s *stubStore) Inventory() []domain.InventoryItem { return s.inventory }
func (s *stubStore) HasPermission(authz.Permission) bool {
	return false
}
func (s *stubStore) Loading() bool { return s.loading }

func serve(h http.HandlerFunc, method, path, body string, store *stubStore) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if store != nil {
		req = req.WithContext(middleware.WithStore(req.Context(), store))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

type testEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Meta    struct {
		RequestID     string `json:"request_id"`
		SelectedStore string `json:"selected_store"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var body testEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	return decodeEnvelope(t, rr).Data
}

func TestLoginRejectsInvalidBody(t *testing.T) {
	h := NewAuthHandler(session.NewRegistry(nil), "gateway_session")
	rr := serve(h.Login, http.MethodPost, "/auth/login", "{not json", &stubStore{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginMapsMalformedCredential(t *testing.T) {
	h := NewAuthHandler(session.NewRegistry(nil), "gateway_session")
	store := &stubStore{loginErr: token.ErrMalformedCredential}
	rr := serve(h.Login, http.MethodPost, "/auth/login", `{"credential":"x"}`, store)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed credential, got %d", rr.Code)
	}
}

func TestLoginMapsSuperseded(t *testing.T) {
	h := NewAuthHandler(session.NewRegistry(nil), "gateway_session")
	store := &stubStore{loginErr: session.ErrSuperseded}
	rr := serve(h.Login, http.MethodPost, "/auth/login", `{"credential":"x"}`, store)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for superseded login, got %d", rr.Code)
	}
}

func TestLoginReturnsSession(t *testing.T) {
	h := NewAuthHandler(session.NewRegistry(nil), "gateway_session")
	store := &stubStore{
		session:  &domain.Session{User: domain.User{ID: "u1", Email: "u1@example.com"}},
		selected: "s1",
	}
	rr := serve(h.Login, http.MethodPost, "/auth/login", `{"credential":"x"}`, store)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Meta.SelectedStore != "s1" {
		t.Fatalf("expected selected store in meta, got %+v", env.Meta)
	}
	if _, ok := env.Data["session"]; !ok {
		t.Fatalf("session missing from payload: %v", env.Data)
	}
}

func TestLogoutClearsCookieAndStore(t *testing.T) {
	h := NewAuthHandler(session.NewRegistry(func(string) *session.Store { return nil }), "gateway_session")
	store := &stubStore{session: &domain.Session{User: domain.User{ID: "u1"}}}
	rr := serve(h.Logout, http.MethodPost, "/auth/logout", "", store)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !store.loggedOut {
		t.Fatal("store logout not invoked")
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}
}

func TestRefreshReportsAuthenticated(t *testing.T) {
	h := NewAuthHandler(session.NewRegistry(nil), "gateway_session")
	rr := serve(h.Refresh, http.MethodPost, "/auth/refresh", "", &stubStore{refreshOut: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if data := decodeData(t, rr); data["authenticated"] != true {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestMeWhileLoading(t *testing.T) {
	h := NewSessionHandler()
	rr := serve(h.Me, http.MethodGet, "/me", "", &stubStore{loading: true})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while resolving, got %d", rr.Code)
	}
}

func TestMeAnonymous(t *testing.T) {
	h := NewSessionHandler()
	rr := serve(h.Me, http.MethodGet, "/me", "", &stubStore{})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestMeReportsExpiry(t *testing.T) {
	h := NewSessionHandler()
	store := &stubStore{session: &domain.Session{
		User:      domain.User{ID: "u1"},
		ExpiresAt: time.Now().Add(-time.Hour),
	}}
	rr := serve(h.Me, http.MethodGet, "/me", "", store)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if data := decodeData(t, rr); data["expired"] != true {
		t.Fatalf("expected expired flag, got %v", data)
	}
}

func TestSelectStoreValidation(t *testing.T) {
	h := NewSessionHandler()

	rr := serve(h.SelectStore, http.MethodPut, "/me/store", `{}`, &stubStore{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty store_id should be rejected, got %d", rr.Code)
	}

	rr = serve(h.SelectStore, http.MethodPut, "/me/store", `{"store_id":"s9"}`, &stubStore{selectErr: session.ErrNoSession})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	rr = serve(h.SelectStore, http.MethodPut, "/me/store", `{"store_id":"s9"}`, &stubStore{selectErr: session.ErrStoreNotInCompany})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for foreign store, got %d", rr.Code)
	}

	store := &stubStore{session: &domain.Session{User: domain.User{ID: "u1"}}}
	rr = serve(h.SelectStore, http.MethodPut, "/me/store", `{"store_id":"s2"}`, store)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.selected != "s2" {
		t.Fatalf("store not switched: %q", store.selected)
	}
}

func TestInventoryRequiresSession(t *testing.T) {
	h := NewSessionHandler()
	rr := serve(h.Inventory, http.MethodGet, "/me/inventory", "", &stubStore{})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	store := &stubStore{
		session:   &domain.Session{User: domain.User{ID: "u1"}},
		selected:  "s1",
		inventory: []domain.InventoryItem{{ID: "i1", StoreID: "s1"}},
	}
	rr = serve(h.Inventory, http.MethodGet, "/me/inventory", "", store)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	items, ok := env.Data["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected inventory payload: %v", env.Data)
	}
	if env.Meta.SelectedStore != "s1" {
		t.Fatalf("expected selected store in meta, got %+v", env.Meta)
	}
}
