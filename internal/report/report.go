// Package report receives CSP violation reports posted by browsers to the
// configured report-uri and serves a small viewer over the collected window.
package report

import (
	"embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tehkyle/cspx/internal/log"
	"github.com/tehkyle/cspx/internal/render"
	"github.com/tehkyle/cspx/internal/reportstore"
)

//go:embed templates
var templates embed.FS

// body shape per CSP Level 2 §4.4
type violationReport struct {
	CSPReport struct {
		DocumentURI        string `json:"document-uri"`
		Referrer           string `json:"referrer"`
		BlockedURI         string `json:"blocked-uri"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		OriginalPolicy     string `json:"original-policy"`
		SourceFile         string `json:"source-file"`
		LineNumber         int    `json:"line-number"`
		StatusCode         int    `json:"status-code"`
	} `json:"csp-report"`
}

const maxReportSize = 64 << 10

func IntakeHandler(store *reportstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var vr violationReport
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportSize)).Decode(&vr)
		if err != nil {
			log.New().WithError(err).AddToContext(r.Context())
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		log.New().
			WithField("document_uri", vr.CSPReport.DocumentURI).
			WithField("violated_directive", vr.CSPReport.ViolatedDirective).
			WithField("blocked_uri", vr.CSPReport.BlockedURI).
			Warn("csp violation")
		store.Add(reportstore.Entry{
			Received:           time.Now(),
			DocumentURI:        vr.CSPReport.DocumentURI,
			ViolatedDirective:  vr.CSPReport.ViolatedDirective,
			EffectiveDirective: vr.CSPReport.EffectiveDirective,
			BlockedURI:         vr.CSPReport.BlockedURI,
			SourceFile:         vr.CSPReport.SourceFile,
			LineNumber:         vr.CSPReport.LineNumber,
		})
		w.WriteHeader(http.StatusNoContent)
	})
}

func ViewerHandler(store *reportstore.Store) http.Handler {
	renderer, err := render.New(templates, "templates/*.tmpl")
	if err != nil {
		log.New().WithError(err).Fatal("report: couldn't parse viewer templates")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := renderer.Render(r.Context(), w, "viewer.tmpl", struct {
			Entries []reportstore.Entry
		}{Entries: store.Recent()})
		if err != nil {
			log.New().WithError(err).AddToContext(r.Context())
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
}
