package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadkadry99/webhook-fulfillment/internal/db"
	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
	"github.com/ziadkadry99/webhook-fulfillment/internal/webhook"
)

func handlers() fulfillment.ActionMap {
	return fulfillment.ActionMap{
		"greet": func(_ context.Context, a *fulfillment.Agent) error {
			return a.Add("Hi there")
		},
	}
}

func newTestServer(t *testing.T, withTranscripts bool) (*Server, *transcript.Store) {
	t.Helper()
	if !withTranscripts {
		return New(Config{Port: 0}, webhook.NewProcessor(handlers(), nil, nil), nil, nil), nil
	}

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	store := transcript.NewStore(database)
	bc := transcript.NewBroadcaster()
	return New(Config{Port: 0}, webhook.NewProcessor(handlers(), store, bc), store, bc), store
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true}, webhook.NewProcessor(handlers(), nil, nil), nil, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestWebhookV1(t *testing.T) {
	srv, _ := newTestServer(t, false)

	body := `{"id":"1","result":{"action":"greet","resolvedQuery":"hello"}}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["speech"] != "Hi there" || out["displayText"] != "Hi there" {
		t.Errorf("unexpected v1 response %v", out)
	}
}

func TestWebhookUnknownActionIs400(t *testing.T) {
	srv, _ := newTestServer(t, false)

	body := `{"queryResult":{"action":"nothing"}}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWebhookGetNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/webhook", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestTranscriptRoutes(t *testing.T) {
	srv, store := newTestServer(t, true)

	body := `{"session":"s","queryResult":{"action":"greet"}}`
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("POST", "/webhook", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("webhook: expected 200, got %d", w.Code)
	}

	entries, err := store.Query(context.Background(), transcript.QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 transcript, got %d", len(entries))
	}

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/transcripts/"+entries[0].ID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("transcript lookup: expected 200, got %d", w.Code)
	}
}

func TestTranscriptRoutesDisabled(t *testing.T) {
	srv, _ := newTestServer(t, false)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/transcripts/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when transcripts are disabled, got %d", w.Code)
	}
}
