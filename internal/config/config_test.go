package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tehkyle/cspx/pkg/cspx"
)

func TestParseRoutesJson(t *testing.T) {
	routes, err := parseRoutes(`[{"prefix": "/api", "target": "http://api:9090", "strip": true}]`)
	if err != nil {
		t.Fatal(err)
	}
	want := []cspx.Route{{Prefix: "/api", Target: "http://api:9090", Strip: true}}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRoutesLines(t *testing.T) {
	routes, err := parseRoutes("PrefixStrip /api http://api:9090\nPrefix /app http://app:3000")
	if err != nil {
		t.Fatal(err)
	}
	want := []cspx.Route{
		{Prefix: "/api", Target: "http://api:9090", Strip: true},
		{Prefix: "/app", Target: "http://app:3000"},
	}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRoutesErrors(t *testing.T) {
	for _, in := range []string{
		"Prefix /api",
		"Sideways /api http://api:9090",
	} {
		if _, err := parseRoutes(in); err == nil {
			t.Errorf("parseRoutes(%q) expected error", in)
		}
	}
}
