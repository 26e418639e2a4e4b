package completion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/velours-studio/reflet/internal/features"
)

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/complete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"assistant_text":"Avec plaisir, je m'en occupe."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	got, err := c.Complete(context.Background(), "system", nil, "Bonjour")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Avec plaisir, je m'en occupe." {
		t.Errorf("assistant text = %q", got)
	}
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"assistant_text":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.backoff = time.Millisecond
	got, err := c.Complete(context.Background(), "", nil, "texte")
	if err != nil {
		t.Fatalf("Complete failed after retries: %v", err)
	}
	if got != "ok" {
		t.Errorf("assistant text = %q", got)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request","message":"bad payload"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.backoff = time.Millisecond
	if _, err := c.Complete(context.Background(), "", nil, "texte"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", calls.Load())
	}
}

func TestComplete_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "")
	c.backoff = time.Minute // would block without cancellation
	if _, err := c.Complete(ctx, "", nil, "texte"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		intent string
		want   string
	}{
		{features.IntentReservation, fallbacks[features.IntentReservation]},
		{features.IntentGeneral, defaultFallback},
		{"unknown", defaultFallback},
	}
	for _, tt := range tests {
		if got := Fallback(tt.intent); got != tt.want {
			t.Errorf("Fallback(%s) = %q, want %q", tt.intent, got, tt.want)
		}
	}

	// Deterministic.
	if Fallback("x") != Fallback("x") {
		t.Error("fallback must be deterministic")
	}
}
