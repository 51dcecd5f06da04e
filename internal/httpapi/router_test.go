package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"awareness-game/internal/attempt"
	"awareness-game/internal/content"
	"awareness-game/internal/identity"
	"awareness-game/internal/progress"
	"awareness-game/internal/store"
)

func TestStatusRecorderWriteTracksAndTruncates(t *testing.T) {
	base := httptest.NewRecorder()
	recorder := &statusRecorder{
		ResponseWriter: base,
		statusCode:     http.StatusOK,
		maxLogBytes:    10,
	}

	payload := []byte("abcdefghijklmnopqrstuvwxyz")
	written, err := recorder.Write(payload)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != len(payload) {
		t.Fatalf("written bytes = %d, want %d", written, len(payload))
	}
	if recorder.bytesWritten != len(payload) {
		t.Fatalf("bytesWritten = %d, want %d", recorder.bytesWritten, len(payload))
	}
	if recorder.logBody.Len() != 10 {
		t.Fatalf("log body length = %d, want 10", recorder.logBody.Len())
	}
	if !recorder.truncated {
		t.Fatalf("expected truncated flag to be true")
	}
	if base.Body.Len() != len(payload) {
		t.Fatalf("client body length = %d, want %d", base.Body.Len(), len(payload))
	}
}

func TestStatusRecorderKeepsStatus(t *testing.T) {
	recorder := &statusRecorder{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK, maxLogBytes: 64}
	recorder.WriteHeader(http.StatusTeapot)
	_, _ = recorder.Write([]byte("short"))

	if recorder.statusCode != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", recorder.statusCode, http.StatusTeapot)
	}
	if recorder.truncated || recorder.logBody.String() != "short" {
		t.Fatalf("unexpected log body %q (truncated=%v)", recorder.logBody.String(), recorder.truncated)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(Services{}, Diagnostics{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "content-type" {
		t.Fatalf("allow headers = %q", got)
	}
}

func TestRootAndUnknownPaths(t *testing.T) {
	router := NewRouter(Services{}, Diagnostics{}, Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("root status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q, want *", got)
	}
	payload := decodeBody[messageResponse](t, rec)
	if payload.Message != "Cybersecurity Awareness Game API running" {
		t.Fatalf("root message = %q", payload.Message)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	var hadDeadline bool
	handler := withTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !hadDeadline {
		t.Fatalf("request context should carry a deadline")
	}
}

func wireServices(gateway *store.Gateway) Services {
	users := identity.NewService(gateway, time.Hour)
	questions := content.NewService(gateway)
	aggregates := progress.NewService(gateway, users)
	return Services{
		Identity: users,
		Content:  questions,
		Attempts: attempt.NewService(gateway, questions, users, aggregates),
		Progress: aggregates,
		Database: gateway,
	}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader).WithContext(context.Background())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterEndToEnd(t *testing.T) {
	gateway, err := store.Open("sqlite:"+t.TempDir(), "httpapi")
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = gateway.Close()
	})
	router := NewRouter(wireServices(gateway), Diagnostics{DatabaseURLSet: true, DatabaseNameSet: true}, Options{RequestTimeout: 10 * time.Second})

	rec := doRequest(t, router, http.MethodPost, "/auth/register", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, http.MethodPost, "/auth/register", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "pw"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "alice", "password": "pw"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed login email status = %d, want 422", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	login := decodeBody[loginResponse](t, rec)

	rec = doRequest(t, router, http.MethodPost, "/content/seed", nil)
	if seed := decodeBody[content.SeedResult](t, rec); seed.Message != "Seeded" || seed.Count != 3 {
		t.Fatalf("unexpected seed: %+v", seed)
	}

	rec = doRequest(t, router, http.MethodPost, "/attempt/submit", map[string]any{"token": login.Token, "category": "phishing", "answers": []int{1}})
	result := decodeBody[attempt.Result](t, rec)
	if result.Score != 100 || result.Correct != 1 || result.Total != 1 || result.AttemptID == "" {
		t.Fatalf("unexpected submit result: %+v", result)
	}

	rec = doRequest(t, router, http.MethodPost, "/attempt/submit", map[string]any{"token": "nope", "category": "phishing", "answers": []int{1}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token submit status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/progress?token="+login.Token, nil)
	summary := decodeBody[progressResponse](t, rec)
	if stats := summary.ByCategory["phishing"]; stats.Attempts != 1 || stats.BestScore != 100 || stats.LastScore != 100 {
		t.Fatalf("unexpected progress: %+v", summary)
	}

	rec = doRequest(t, router, http.MethodGet, "/test", nil)
	diagnostics := decodeBody[diagnosticsResponse](t, rec)
	if diagnostics.ConnectionStatus != "Connected" || len(diagnostics.Collections) < 4 {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics)
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/logout", map[string]string{"token": login.Token})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/progress?token="+login.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("progress after logout status = %d, want 401", rec.Code)
	}
}

func TestRouterWithoutDatabase(t *testing.T) {
	var gateway *store.Gateway
	router := NewRouter(wireServices(gateway), Diagnostics{}, Options{})

	rec := doRequest(t, router, http.MethodPost, "/auth/register", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "pw"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("register status = %d, want 500", rec.Code)
	}
	if payload := decodeBody[errorResponse](t, rec); payload.Detail != "Database not configured" {
		t.Fatalf("detail = %q", payload.Detail)
	}

	rec = doRequest(t, router, http.MethodGet, "/test", nil)
	diagnostics := decodeBody[diagnosticsResponse](t, rec)
	if diagnostics.Database != "⚠️ Available but not initialized" || diagnostics.DatabaseURL != "❌ Not Set" {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics)
	}
}
