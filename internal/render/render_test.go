package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/tehkyle/cspx/pkg/csp"
)

var testFS = fstest.MapFS{
	"page.tmpl": &fstest.MapFile{
		Data: []byte(`<html>{{inlineStyle .CSS}}{{inlineScript .JS}}</html>`),
	},
}

type pageData struct {
	JS  string
	CSS string
}

func renderPage(t *testing.T, p csp.Policy) (body string, header http.Header, ctx context.Context) {
	t.Helper()
	re, err := New(testFS, "*.tmpl")
	if err != nil {
		t.Fatal(err)
	}
	header = http.Header{}
	ctx = p.Prepare(context.Background(), header)
	var buf bytes.Buffer
	err = re.Render(ctx, &buf, "page.tmpl", pageData{JS: "alert(1)", CSS: "body{}"})
	if err != nil {
		t.Fatal(err)
	}
	p.Finalize(ctx, header)
	return buf.String(), header, ctx
}

func TestRenderRefuseDropsInline(t *testing.T) {
	body, _, _ := renderPage(t, csp.Policy{})
	if body != "<html></html>" {
		t.Errorf("body = %q, want inline blocks dropped", body)
	}
}

func TestRenderUnsafe(t *testing.T) {
	body, _, _ := renderPage(t, csp.Policy{ScriptInline: csp.Unsafe, StyleInline: csp.Unsafe})
	want := "<html><style>body{}</style><script>alert(1)</script></html>"
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestRenderNonce(t *testing.T) {
	body, _, ctx := renderPage(t, csp.Policy{ScriptInline: csp.Nonce, StyleInline: csp.Nonce})
	nonce, err := csp.NonceValue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("<html><style nonce=%q>body{}</style><script nonce=%q>alert(1)</script></html>", nonce, nonce)
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestRenderHash(t *testing.T) {
	body, header, _ := renderPage(t, csp.Policy{ScriptInline: csp.Hash, StyleInline: csp.Hash})
	want := "<html><style>body{}</style><script>alert(1)</script></html>"
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}

	jsSum := sha256.Sum256([]byte("alert(1)"))
	cssSum := sha256.Sum256([]byte("body{}"))
	got := header.Get("Content-Security-Policy")
	wantHeader := fmt.Sprintf("script-src 'sha256-%s';style-src 'sha256-%s';",
		base64.StdEncoding.EncodeToString(jsSum[:]),
		base64.StdEncoding.EncodeToString(cssSum[:]))
	if got != wantHeader {
		t.Errorf("header = %q, want %q", got, wantHeader)
	}
	if strings.Contains(got, "Placeholder") {
		t.Errorf("placeholder left in header: %q", got)
	}
}
