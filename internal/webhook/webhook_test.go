package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mavwarf/alerttone/internal/eventlog"
)

func TestSendSuccess(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	if err := Send(srv.URL, []byte(`{"event":"played"}`), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody != `{"event":"played"}` {
		t.Errorf("body = %q", gotBody)
	}
	if gotContentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", gotContentType)
	}
}

func TestSendExpandsHeaderSecrets(t *testing.T) {
	t.Setenv("ALERTTONE_HOOK_TOKEN", "s3cret")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(204)
	}))
	defer srv.Close()

	err := Send(srv.URL, []byte("{}"), map[string]string{"Authorization": "Bearer $ALERTTONE_HOOK_TOKEN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer s3cret")
	}
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(502)
		io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	err := Send(srv.URL, []byte("{}"), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream down") {
		t.Errorf("error should carry status and body snippet: %v", err)
	}
}

func TestNotifierPostsPlaybackEvents(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		json.NewDecoder(r.Body).Decode(&m)
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, nil, nil)
	ts := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	n.Observe(eventlog.Event{Time: ts, Priority: "high", Kind: eventlog.KindSynthesized})
	n.Observe(eventlog.Event{Time: ts, RunID: "r", Priority: "high", Kind: eventlog.KindPlayed, Bytes: 921600})
	n.Observe(eventlog.Event{Time: ts, Priority: "high", Kind: eventlog.KindStopped})
	n.Wait()

	if len(got) != 1 {
		t.Fatalf("posted %d events, want 1", len(got))
	}
	if got[0]["event"] != "played" || got[0]["priority"] != "high" || got[0]["time"] != "2026-04-01T09:30:00Z" {
		t.Errorf("unexpected payload: %v", got[0])
	}
}
