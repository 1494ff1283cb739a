package cspx

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/tehkyle/cspx/internal/fallbackfs"
	"github.com/tehkyle/cspx/internal/log"
)

type Middleware func(next http.Handler) http.Handler

func Serve(ctx context.Context, addr string, middlewares []Middleware, publicDir fs.FS, publicPrefix string, endpoints []Endpoint, routes ...Route) error {
	mux, err := buildMux(publicDir, publicPrefix, endpoints, routes...)
	if err != nil {
		return err
	}

	var handler http.Handler = mux
	for _, m := range middlewares {
		handler = m(handler)
	}
	server := &http.Server{Addr: addr, Handler: handler}
	return waitAll(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	}, func() error {
		return server.ListenAndServe()
	})
}

func buildMux(publicDir fs.FS, publicPrefix string, endpoints []Endpoint, routes ...Route) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	for _, e := range endpoints {
		mux.Handle(e.Path, e.Handler)
		log.New().WithField("path", e.Path).Info("hosting endpoint")
	}

	if publicDir != nil {
		publicPrefix = path.Clean("/" + strings.TrimPrefix(publicPrefix, "/"))
		f := fallbackfs.New(publicDir, "index.html")
		h := http.StripPrefix(publicPrefix, http.FileServer(http.FS(f)))
		attachToMux(mux, publicPrefix, h)
		if publicPrefix != "/" {
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, publicPrefix, http.StatusMovedPermanently)
			})
		}
		log.New().WithField("prefix", publicPrefix).Info("hosting assets directory")
	}

	for _, r := range routes {
		target, err := url.Parse(r.Target)
		if err != nil {
			return nil, fmt.Errorf("couldn't parse route target: %w", err)
		}
		p := httputil.NewSingleHostReverseProxy(target)
		if r.RewriteHost {
			director := p.Director
			p.Director = func(req *http.Request) {
				director(req)
				req.Host = target.Host
			}
		}
		prefix := strings.TrimSuffix(r.Prefix, "/")
		h := http.Handler(p)
		if r.Strip {
			h = http.StripPrefix(prefix, h)
		}
		attachToMux(mux, prefix, h)
		log.New().
			WithField("prefix", r.Prefix).
			WithField("target", r.Target).
			WithField("strip", r.Strip).
			Info("hosting reverse proxy")
	}

	return mux, nil
}
