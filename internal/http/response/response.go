package response

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
	Meta    meta        `json:"meta"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// meta carries the cross-cutting response context: request correlation
// and, on session-scoped answers, the store the payload was computed
// under so the client shell never re-derives it.
type meta struct {
	RequestID     string    `json:"request_id"`
	SelectedStore string    `json:"selected_store,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	write(w, status, envelope{Success: true, Data: data, Meta: buildMeta(r, "")})
}

// JSONScoped is JSON with the selected store stamped into the meta.
func JSONScoped(w http.ResponseWriter, r *http.Request, status int, data interface{}, selectedStore string) {
	write(w, status, envelope{Success: true, Data: data, Meta: buildMeta(r, selectedStore)})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	write(w, status, envelope{Success: false, Error: &apiError{Code: code, Message: message, Details: details}, Meta: buildMeta(r, "")})
}

// Loading answers a request that arrived while the browser's session is
// still resolving. The client retries after the hinted delay instead of
// treating the answer as a navigation decision.
func Loading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	Error(w, r, http.StatusServiceUnavailable, "SESSION_LOADING", "session is still resolving", nil)
}

func write(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func buildMeta(r *http.Request, selectedStore string) meta {
	id := chimiddleware.GetReqID(r.Context())
	if id == "" {
		id = r.Header.Get("X-Request-Id")
	}
	if id == "" {
		id = "req-unknown"
	}
	return meta{RequestID: id, SelectedStore: selectedStore, Timestamp: time.Now().UTC()}
}
