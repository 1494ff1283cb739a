// Package csp builds Content-Security-Policy headers in two phases: a
// provisional header is written before the handler runs (so the page being
// rendered can reference the request's nonce), and hash source lists collected
// while the body is produced are substituted into it once the handler returns.
package csp

import (
	"context"
	"net/http"
	"strings"
)

type InlineMode int

const (
	Refuse InlineMode = iota
	Unsafe
	Nonce
	Hash
)

func (m InlineMode) String() string {
	switch m {
	case Unsafe:
		return "unsafe"
	case Nonce:
		return "nonce"
	case Hash:
		return "hash"
	}
	return "refuse"
}

func ParseInlineMode(s string) (InlineMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "refuse":
		return Refuse, true
	case "unsafe", "unsafe-inline":
		return Unsafe, true
	case "nonce":
		return Nonce, true
	case "hash":
		return Hash, true
	}
	return Refuse, false
}

// Directive enumerates the two directives that support inline sources.
type Directive int

const (
	Script Directive = iota
	Style
)

var directives = [...]Directive{Script, Style}

func (d Directive) String() string {
	if d == Style {
		return "style-src"
	}
	return "script-src"
}

// placeholder returns the token written into the provisional header where the
// hash source list goes. Angle brackets can't occur in directive syntax, so
// the token can't collide with configured source values.
func (d Directive) placeholder() string {
	if d == Style {
		return "<StyleHashListPlaceholder>"
	}
	return "<ScriptHashListPlaceholder>"
}

const (
	headerKey           = "Content-Security-Policy"
	headerKeyReportOnly = "Content-Security-Policy-Report-Only"
)

// Policy is the per-instance configuration. It is immutable after
// construction and safe to share across requests.
type Policy struct {
	DefaultSrc   string
	ScriptSrc    string
	ScriptInline InlineMode
	StyleSrc     string
	StyleInline  InlineMode
	ReportOnly   bool
	ReportURI    string
}

func (p Policy) directive(d Directive) (src string, mode InlineMode) {
	if d == Style {
		return p.StyleSrc, p.StyleInline
	}
	return p.ScriptSrc, p.ScriptInline
}

func (p Policy) HeaderKey() string {
	if p.ReportOnly {
		return headerKeyReportOnly
	}
	return headerKey
}

// Prepare assembles the provisional header and writes it into h. It returns a
// context carrying the request state the rendering layer and Finalize read;
// pass it on to the handler. Directives are always emitted in the order
// default-src, script-src, style-src, report-uri. A directive whose source is
// empty and whose inline mode is Refuse is omitted entirely, and if nothing at
// all is emitted no header is written.
func (p Policy) Prepare(ctx context.Context, h http.Header) context.Context {
	st := &state{}
	ctx = context.WithValue(ctx, contextKey{}, st)

	var b strings.Builder
	if p.DefaultSrc != "" {
		b.WriteString("default-src ")
		b.WriteString(p.DefaultSrc)
		b.WriteByte(';')
	}
	for _, d := range directives {
		src, mode := p.directive(d)
		if src == "" && mode == Refuse {
			continue
		}
		b.WriteString(d.String())
		if src != "" {
			b.WriteByte(' ')
			b.WriteString(src)
		}
		st.modes[d] = mode
		switch mode {
		case Unsafe:
			b.WriteString(" 'unsafe-inline'")
		case Nonce:
			// One nonce per request, shared between script-src and
			// style-src: the page stamps a single value into both tag
			// families.
			b.WriteString(" 'nonce-")
			b.WriteString(st.nonceValue())
			b.WriteByte('\'')
		case Hash:
			st.hashes[d] = []string{}
			b.WriteString(d.placeholder())
		}
		b.WriteByte(';')
	}
	if p.ReportURI != "" {
		b.WriteString("report-uri ")
		b.WriteString(p.ReportURI)
		b.WriteByte(';')
	}

	if b.Len() > 0 {
		h.Set(p.HeaderKey(), b.String())
	}
	return ctx
}

// Finalize replaces each hash placeholder in the provisional header with the
// sources accumulated during body production, in insertion order. An empty
// accumulator leaves the directive with no inline allowance at all. Finalize
// is a no-op when Prepare wrote no header, and idempotent otherwise.
func (p Policy) Finalize(ctx context.Context, h http.Header) {
	st, ok := fromContext(ctx)
	if !ok {
		return
	}
	st.finalized = true

	v := h.Get(p.HeaderKey())
	if v == "" {
		return
	}
	for _, d := range directives {
		if st.modes[d] != Hash {
			continue
		}
		var b strings.Builder
		for _, digest := range st.hashes[d] {
			b.WriteString(" 'sha256-")
			b.WriteString(digest)
			b.WriteByte('\'')
		}
		v = strings.Replace(v, d.placeholder(), b.String(), 1)
	}
	h.Set(p.HeaderKey(), v)
}
