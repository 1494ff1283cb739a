// Package render is the body-producing side of the csp two-phase protocol.
// Templates emit inline script and style blocks through it; depending on the
// policy's inline mode for the directive it stamps a nonce attribute, records
// the block's sha256 digest for the header, emits the block as-is, or drops
// it.
package render

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/tehkyle/cspx/internal/log"
	"github.com/tehkyle/cspx/pkg/csp"
)

type Renderer struct {
	tmpl *template.Template
}

func New(fsys fs.FS, patterns ...string) (*Renderer, error) {
	// Parse with placeholder funcs; Render rebinds them per request since
	// they close over the request context.
	t := template.New("").Funcs(template.FuncMap{
		"inlineScript": func(string) template.HTML { return "" },
		"inlineStyle":  func(string) template.HTML { return "" },
	})
	t, err := t.ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

func (re *Renderer) Render(ctx context.Context, w io.Writer, name string, data any) error {
	t, err := re.tmpl.Clone()
	if err != nil {
		return err
	}
	t = t.Funcs(template.FuncMap{
		"inlineScript": func(js string) template.HTML {
			return emitInline(ctx, csp.Script, "script", js)
		},
		"inlineStyle": func(css string) template.HTML {
			return emitInline(ctx, csp.Style, "style", css)
		},
	})
	return t.ExecuteTemplate(w, name, data)
}

func emitInline(ctx context.Context, d csp.Directive, tag string, body string) template.HTML {
	switch csp.Mode(ctx, d) {
	case csp.Unsafe:
		return template.HTML(fmt.Sprintf("<%s>%s</%s>", tag, body, tag))
	case csp.Nonce:
		nonce, err := csp.NonceValue(ctx)
		if err != nil {
			log.New().WithError(err).Error("render: dropping inline block")
			return ""
		}
		return template.HTML(fmt.Sprintf("<%s nonce=%q>%s</%s>", tag, nonce, body, tag))
	case csp.Hash:
		sum := sha256.Sum256([]byte(body))
		err := csp.AppendHash(ctx, d, base64.StdEncoding.EncodeToString(sum[:]))
		if err != nil {
			log.New().WithError(err).Error("render: dropping inline block")
			return ""
		}
		return template.HTML(fmt.Sprintf("<%s>%s</%s>", tag, body, tag))
	}
	// Refuse: the block is not allowed to execute, don't emit it at all.
	return ""
}
