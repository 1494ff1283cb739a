package cspx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

var publicFS = fstest.MapFS{
	"index.html": &fstest.MapFile{Data: []byte("shell")},
	"app.css":    &fstest.MapFile{Data: []byte("body{}")},
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBuildMuxEndpointsAndAssets(t *testing.T) {
	endpoint := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})
	mux, err := buildMux(publicFS, "/app", []Endpoint{{Path: "/ping", Handler: endpoint}})
	if err != nil {
		t.Fatal(err)
	}

	if w := get(t, mux, "/ping"); w.Body.String() != "pong" {
		t.Errorf("/ping body = %q", w.Body.String())
	}
	if w := get(t, mux, "/app/app.css"); w.Body.String() != "body{}" {
		t.Errorf("/app/app.css body = %q", w.Body.String())
	}
	// client side route falls back to the app shell
	if w := get(t, mux, "/app/some/route"); w.Body.String() != "shell" {
		t.Errorf("/app/some/route body = %q", w.Body.String())
	}
	// missing asset with an extension still 404s
	if w := get(t, mux, "/app/missing.js"); w.Code != http.StatusNotFound {
		t.Errorf("/app/missing.js status = %d, want 404", w.Code)
	}
	// root redirects to the public prefix
	if w := get(t, mux, "/"); w.Code != http.StatusMovedPermanently {
		t.Errorf("/ status = %d, want 301", w.Code)
	}
}

func TestBuildMuxBadRoute(t *testing.T) {
	_, err := buildMux(nil, "", nil, Route{Prefix: "/x", Target: "://bad"})
	if err == nil {
		t.Error("expected error for unparsable target")
	}
}
