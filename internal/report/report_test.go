package report

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tehkyle/cspx/internal/reportstore"
)

const sampleReport = `{
	"csp-report": {
		"document-uri": "https://example.com/page",
		"violated-directive": "script-src 'self'",
		"effective-directive": "script-src",
		"blocked-uri": "https://evil.example.com/x.js",
		"source-file": "https://example.com/page",
		"line-number": 12
	}
}`

func TestIntakeHandler(t *testing.T) {
	store := reportstore.New(time.Hour)
	h := IntakeHandler(store)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/csp-report", strings.NewReader(sampleReport)))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}

	entries := store.Recent()
	if len(entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.BlockedURI != "https://evil.example.com/x.js" {
		t.Errorf("BlockedURI = %q", e.BlockedURI)
	}
	if e.ViolatedDirective != "script-src 'self'" {
		t.Errorf("ViolatedDirective = %q", e.ViolatedDirective)
	}
	if e.LineNumber != 12 {
		t.Errorf("LineNumber = %d", e.LineNumber)
	}
}

func TestIntakeHandlerRejects(t *testing.T) {
	store := reportstore.New(time.Hour)
	h := IntakeHandler(store)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csp-report", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/csp-report", strings.NewReader("not json")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if len(store.Recent()) != 0 {
		t.Error("rejected report was stored")
	}
}

func TestViewerHandler(t *testing.T) {
	store := reportstore.New(time.Hour)
	store.Add(reportstore.Entry{
		Received:          time.Now(),
		DocumentURI:       "https://example.com/page",
		ViolatedDirective: "script-src",
		BlockedURI:        "https://evil.example.com/x.js",
	})

	w := httptest.NewRecorder()
	ViewerHandler(store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/.cspx/reports", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); !strings.Contains(body, "https://evil.example.com/x.js") {
		t.Errorf("viewer body missing blocked uri:\n%s", body)
	}
}
