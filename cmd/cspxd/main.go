package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tehkyle/cspx/internal/basicauth"
	"github.com/tehkyle/cspx/internal/config"
	"github.com/tehkyle/cspx/internal/debug"
	"github.com/tehkyle/cspx/internal/devsession"
	"github.com/tehkyle/cspx/internal/gzip"
	"github.com/tehkyle/cspx/internal/log"
	"github.com/tehkyle/cspx/internal/nocache"
	"github.com/tehkyle/cspx/internal/report"
	"github.com/tehkyle/cspx/internal/reportstore"
	"github.com/tehkyle/cspx/internal/secureheaders"
	"github.com/tehkyle/cspx/pkg/csp"
	"github.com/tehkyle/cspx/pkg/cspx"
)

func main() {
	cfg := config.Get()
	var publicFs fs.FS
	if cfg.PublicDir != "" {
		publicFs = os.DirFS(cfg.PublicDir)
	}

	var endpoints []cspx.Endpoint
	if strings.HasPrefix(cfg.Policy.ReportURI, "/") {
		store := reportstore.New(cfg.ReportStoreWindow)
		endpoints = append(endpoints, cspx.Endpoint{
			Path:    cfg.Policy.ReportURI,
			Handler: report.IntakeHandler(store),
		})
		if cfg.ReportViewerPass != "" {
			viewer := nocache.Middleware(report.ViewerHandler(store))
			viewer = basicauth.Middleware(cfg.ReportViewerPass)(viewer)
			endpoints = append(endpoints, cspx.Endpoint{Path: "/.cspx/reports", Handler: viewer})
		}
	}
	if cfg.DevPass != "" && cfg.JwtEc256 != nil && cfg.JwtEc256Pub != nil {
		h := nocache.Middleware(debug.PolicyHandler(cfg.Policy))
		h = devsession.Middleware(cfg.DevPass, cfg.DevSessionDuration, cfg.JwtEc256, cfg.JwtEc256Pub, cfg.DevDisableSecure)(h)
		endpoints = append(endpoints, cspx.Endpoint{Path: "/.cspx/policy", Handler: h})
	}

	middlewares := []cspx.Middleware{
		csp.Middleware(cfg.Policy),
		secureheaders.Middleware(),
		gzip.Middleware,
		log.Middleware,
	}
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	err := cspx.Serve(ctx, cfg.Addr, middlewares, publicFs, cfg.PublicPrefix, endpoints, cfg.Routes...)
	log.New().WithError(err).Info("shutting down")
	log.Drain(context.Background())
}
