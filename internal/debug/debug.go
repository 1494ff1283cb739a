// Package debug exposes the effective policy configuration for inspection.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/tehkyle/cspx/internal/log"
	"github.com/tehkyle/cspx/pkg/csp"
)

type policyView struct {
	DefaultSrc   string `json:"default_src,omitempty"`
	ScriptSrc    string `json:"script_src,omitempty"`
	ScriptInline string `json:"script_inline"`
	StyleSrc     string `json:"style_src,omitempty"`
	StyleInline  string `json:"style_inline"`
	ReportOnly   bool   `json:"report_only"`
	ReportURI    string `json:"report_uri,omitempty"`
	HeaderKey    string `json:"header_key"`
	Provisional  string `json:"provisional,omitempty"`
}

func PolicyHandler(p csp.Policy) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The csp middleware has already run phase 1 for this response, so
		// the provisional header can be read straight off the header map.
		view := policyView{
			DefaultSrc:   p.DefaultSrc,
			ScriptSrc:    p.ScriptSrc,
			ScriptInline: p.ScriptInline.String(),
			StyleSrc:     p.StyleSrc,
			StyleInline:  p.StyleInline.String(),
			ReportOnly:   p.ReportOnly,
			ReportURI:    p.ReportURI,
			HeaderKey:    p.HeaderKey(),
			Provisional:  w.Header().Get(p.HeaderKey()),
		}
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(view)
		if err != nil {
			log.New().WithError(err).AddToContext(r.Context())
		}
	})
}
