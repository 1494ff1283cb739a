package nocache

import (
	"net/http"
)

// Middleware marks a response uncacheable. Applied to the report viewer and
// policy debug endpoints, whose content is always live.
func Middleware(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
