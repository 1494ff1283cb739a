package gzip

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

func Middleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
