package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/velours-studio/reflet/internal/feedback"
	"github.com/velours-studio/reflet/internal/memory"
	"github.com/velours-studio/reflet/internal/orchestrator"
	"github.com/velours-studio/reflet/internal/store"
)

func testServer(token string) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := memory.NewStore(logger)
	eng := feedback.NewEngine(feedback.SourceFunc(func() float64 { return 0.99 }), logger)
	orch := orchestrator.New(mem, eng, nil, nil, nil, logger)
	return NewServer(8760, token, orch, mem)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/api/v1/reflet/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "reflet" {
		t.Errorf("expected agent reflet, got %q", body["agent"])
	}
}

func TestProcessConversationEndpoint(t *testing.T) {
	srv := testServer("")

	payload := `{"user_text":"Je voudrais réserver une table pour deux.","context":{"user_id":"u1","session_id":"s1","hour_of_day":19}}`
	req := httptest.NewRequest("POST", "/api/v1/conversations", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result orchestrator.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.AssistantText == "" {
		t.Error("expected assistant text in response")
	}
	if result.Features.Intent.Label != "reservation" {
		t.Errorf("intent = %q, want reservation", result.Features.Intent.Label)
	}
}

func TestProcessConversationValidation(t *testing.T) {
	srv := testServer("")

	tests := []struct {
		name    string
		payload string
	}{
		{"missing user_text", `{"context":{"user_id":"u1"}}`},
		{"missing user_id", `{"user_text":"bonjour"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/conversations", strings.NewReader(tt.payload))
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	srv := testServer("secret")

	payload := `{"user_text":"bonjour","context":{"user_id":"u1"}}`

	req := httptest.NewRequest("POST", "/api/v1/conversations", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without token: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/api/v1/conversations", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token: expected 200, got %d", w.Code)
	}
}

func TestFeedbackFlow(t *testing.T) {
	srv := testServer("")

	// Open a session through the explicit trigger boundary.
	trigger := `{"event":"after_booking","user_id":"u1"}`
	req := httptest.NewRequest("POST", "/api/v1/feedback/trigger", strings.NewReader(trigger))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("trigger: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var session feedback.Session
	if err := json.NewDecoder(w.Body).Decode(&session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.Status != feedback.StatusPending {
		t.Fatalf("session status = %q, want pending", session.Status)
	}

	// Answer it.
	answer := `{"response":"4/5, très bien"}`
	url := fmt.Sprintf("/api/v1/feedback/%s", session.ID)
	req = httptest.NewRequest("POST", url, strings.NewReader(answer))
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec feedback.Record
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}
	if rec.Rating == nil || rec.Rating.Value != 4 {
		t.Errorf("rating = %+v, want 4", rec.Rating)
	}

	// A second answer must be rejected.
	req = httptest.NewRequest("POST", url, strings.NewReader(answer))
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("second answer: expected 409, got %d", w.Code)
	}
}

func TestTriggerValidation(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("POST", "/api/v1/feedback/trigger", strings.NewReader(`{"event":"after_lunch","user_id":"u1"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown event, got %d", w.Code)
	}
}

func TestConversationHistoryEndpoint(t *testing.T) {
	srv := testServer("")

	for _, payload := range []string{
		`{"user_text":"Je voudrais réserver une table.","context":{"user_id":"alice","session_id":"s1","hour_of_day":19}}`,
		`{"user_text":"Un restaurant italien sympa ?","context":{"user_id":"alice","session_id":"s1","hour_of_day":20}}`,
		`{"user_text":"Bonjour","context":{"user_id":"bob","session_id":"s2"}}`,
	} {
		req := httptest.NewRequest("POST", "/api/v1/conversations", strings.NewReader(payload))
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("seed conversation: expected 200, got %d", w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/api/v1/conversations/alice", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var history []store.ConversationSummary
	if err := json.NewDecoder(w.Body).Decode(&history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	// Newest first.
	if history[0].UserText != "Un restaurant italien sympa ?" {
		t.Errorf("first entry = %q, want the most recent exchange", history[0].UserText)
	}
	for _, h := range history {
		if h.Overall <= 0 {
			t.Errorf("entry %s overall = %v, want > 0", h.ID, h.Overall)
		}
	}

	req = httptest.NewRequest("GET", "/api/v1/conversations/alice?limit=1", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	var limited []store.ConversationSummary
	if err := json.NewDecoder(w.Body).Decode(&limited); err != nil {
		t.Fatalf("failed to decode limited history: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited history length = %d, want 1", len(limited))
	}

	req = httptest.NewRequest("GET", "/api/v1/conversations/alice?limit=zero", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/api/v1/report", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var report orchestrator.PerformanceReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Trend != orchestrator.TrendInsufficient {
		t.Errorf("trend = %q, want insufficient_data with no traffic", report.Trend)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
