package log

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentWorker, Output: &buf})
	l.Info("hello", "k", "v")

	out := buf.String()
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected output: %q", out)
	}

	buf.Reset()
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug must be filtered at info level, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentApp, JSON: true, Output: &buf}).WithComponent(ComponentHTTP)
	if l.Component() != ComponentHTTP {
		t.Errorf("expected http component, got %s", l.Component())
	}
	l.Info("x")
	if !strings.Contains(buf.String(), `"component":"http"`) {
		t.Errorf("expected json component field, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithTransaction(7, decimal.RequireFromString("12.5"), "Food").
		WithOperation(OpCreate).
		WithError(errors.New("boom"))

	if f[FieldAmount] != "12.50" || f[FieldTransactionID] != int64(7) || f[FieldError] != "boom" {
		t.Errorf("unexpected fields: %v", f)
	}

	s := f.ToSlice()
	if len(s) != 2*len(f) {
		t.Fatalf("expected %d items, got %d", 2*len(f), len(s))
	}
	if s[0] != FieldAmount {
		t.Errorf("expected keys sorted, first is %v", s[0])
	}

	if len(NewFields().WithError(nil)) != 0 {
		t.Error("nil error must not add a field")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})

	var seenID string
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/budget?x=1", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seenID == "" || rec.Header().Get(RequestIDHeader) != seenID {
		t.Errorf("request id not propagated: ctx=%q header=%q", seenID, rec.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	for _, want := range []string{"inside", "request_id=" + seenID, "status_code=418", "client_ip=10.0.0.1", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}})
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Errorf("expected incoming id to be kept, got %q", got)
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()).Logger == nil {
		t.Error("expected default logger")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.5:4321"
	if got := ClientIP(r); got != "192.168.1.5" {
		t.Errorf("expected host without port, got %q", got)
	}
	r.Header.Set("X-Real-IP", "1.2.3.4")
	if got := ClientIP(r); got != "1.2.3.4" {
		t.Errorf("expected X-Real-IP, got %q", got)
	}
}
