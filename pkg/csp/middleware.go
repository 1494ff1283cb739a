package csp

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
)

// Middleware runs Prepare before the handler and Finalize after it. The body
// is buffered so the header substitution happens before anything goes out on
// the wire. Finalize runs even when the handler panics; the buffered body is
// dropped in that case and the panic continues up to the server.
func Middleware(p Policy) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := p.Prepare(r.Context(), w.Header())
			bw := buffered(w)
			defer func() {
				p.Finalize(ctx, w.Header())
				if rec := recover(); rec != nil {
					panic(rec)
				}
				bw.flush()
			}()
			next.ServeHTTP(bw, r.WithContext(ctx))
		})
	}
}

type bufferedWriter struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	hijacked bool
}

func buffered(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w}
}

func (bw *bufferedWriter) WriteHeader(code int) {
	if bw.status == 0 {
		bw.status = code
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	return bw.body.Write(b)
}

func (bw *bufferedWriter) flush() {
	if bw.hijacked {
		return
	}
	if bw.status != 0 {
		bw.ResponseWriter.WriteHeader(bw.status)
	}
	if bw.body.Len() > 0 {
		_, _ = bw.ResponseWriter.Write(bw.body.Bytes())
	}
}

func (bw *bufferedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := bw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("wrapped response writer doesn't support hijack")
	}
	bw.hijacked = true
	return h.Hijack()
}
