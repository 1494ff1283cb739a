// Package secureheaders sets the non-CSP security headers. The CSP header
// itself is owned by pkg/csp since it needs the two-phase protocol.
package secureheaders

import (
	"net/http"

	"github.com/unrolled/secure"
)

func Middleware() func(next http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	return sec.Handler
}
