package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

func testValues() url.Values {
	return url.Values{
		"firstName": {"John"},
		"lastName":  {"Smith"},
		"email":     {"john@example.com"},
		"phone":     {"555-123-4567"},
		"address":   {"12 Main Street"},
		"city":      {"Springfield"},
		"state":     {"IL"},
		"country":   {"US"},
		"gender":    {"male"},
		"dob":       {"1980-02-29"},
		"terms":     {""},
	}
}

func submit(t *testing.T, server *http.Server) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(testValues().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newTestServer(t *testing.T, cfg Config) *http.Server {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	server, closer, err := NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() {
		if err := closer.Close(); err != nil {
			t.Errorf("close resources: %v", err)
		}
	})
	return server
}

func TestNewServerWithFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations_log.txt")
	server := newTestServer(t, Config{Addr: ":0", AuditSink: AuditSinkFile, AuditLogPath: path})

	rec := submit(t, server)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 1 {
		t.Fatalf("expected one audit line, got %d: %s", lines, data)
	}
	if !strings.Contains(string(data), `"email":"john@example.com"`) {
		t.Fatalf("audit line misses email: %s", data)
	}
}

func TestNewServerWithSQLiteSink(t *testing.T) {
	server := newTestServer(t, Config{
		Addr:      ":0",
		AuditSink: AuditSinkSQLite,
		DBPath:    filepath.Join(t.TempDir(), "regintake.sqlite"),
	})

	if rec := submit(t, server); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestNewServerWithMemorySinkAndRateLimit(t *testing.T) {
	server := newTestServer(t, Config{Addr: ":0", AuditSink: AuditSinkMemory, RateLimit: 0.001, RateBurst: 1})

	if rec := submit(t, server); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if rec := submit(t, server); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
}

func TestNewServerRejectsUnknownSink(t *testing.T) {
	_, _, err := NewServer(context.Background(), Config{AuditSink: "s3"})
	if err == nil {
		t.Fatal("expected error for unknown audit sink")
	}
}

func TestNewServerConfirmationNeedsSMTPHost(t *testing.T) {
	_, _, err := NewServer(context.Background(), Config{AuditSink: AuditSinkMemory, SendConfirmation: true})
	if err == nil {
		t.Fatal("expected error when confirmation mail is enabled without an SMTP host")
	}
}

func TestNewServerDeliversAcceptedRegistrationToWebhook(t *testing.T) {
	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	server := newTestServer(t, Config{Addr: ":0", AuditSink: AuditSinkMemory, WebhookURL: hook.URL, WebhookSecret: "s"})
	rec := submit(t, server)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Publishing is synchronous, so the hook has been called by now.
	var req *http.Request
	select {
	case req = <-received:
	default:
		t.Fatal("webhook was not called")
	}
	body := <-bodies

	if got := req.Header.Get("X-Request-ID"); got == "" || got != rec.Header().Get("X-Request-ID") {
		t.Fatalf("webhook request id = %q, response request id = %q", got, rec.Header().Get("X-Request-ID"))
	}
	var envelope domain.EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.EventType != domain.EventRegistrationAccepted {
		t.Fatalf("event type = %q", envelope.EventType)
	}
	var payload domain.RegistrationAccepted
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	want := domain.RegistrationAccepted{FirstName: "John", LastName: "Smith", Email: "john@example.com", City: "Springfield", Country: "US"}
	if payload != want {
		t.Fatalf("payload = %+v, want %+v", payload, want)
	}
}
