// Package devsession gates the policy debug endpoint behind a short lived
// cookie session established with a password login.
package devsession

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tehkyle/cspx/internal/log"
	"golang.org/x/crypto/bcrypt"
)

type contextKey struct{}

const cookieName = "cspx-dev"

type claims struct {
	DevUser string `json:"dev_user"`
	jwt.RegisteredClaims
}

func Middleware(bcryptHash string, sessionDuration time.Duration, key *ecdsa.PrivateKey, pub *ecdsa.PublicKey, disableSecure bool) func(next http.Handler) http.Handler {
	if bcryptHash == "" {
		log.New().Fatal("devsession: bcrypt hash required")
	}
	if key == nil || pub == nil {
		log.New().Fatal("devsession: EC key pair required")
	}
	if sessionDuration.Milliseconds() <= 0 {
		log.New().Fatal("devsession: session duration negative or zero")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err == nil && cookie.Valid() == nil {
				var c claims
				t, err := jwt.ParseWithClaims(cookie.Value, &c, func(t *jwt.Token) (interface{}, error) {
					if t.Method.Alg() != jwt.SigningMethodES256.Alg() {
						return nil, fmt.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
					}
					return pub, nil
				})
				if err == nil && t.Valid {
					log.New().WithField("dev_user", c.DevUser).AddToContext(r.Context())
					ctx := context.WithValue(r.Context(), contextKey{}, c.DevUser)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if r.Method == http.MethodPost {
				user := r.FormValue("user")
				password := r.FormValue("password")
				if bcrypt.CompareHashAndPassword([]byte(bcryptHash), []byte(password)) == nil {
					exp := time.Now().Add(sessionDuration)
					devClaims := claims{
						DevUser: user,
						RegisteredClaims: jwt.RegisteredClaims{
							Issuer:    "cspx-dev",
							IssuedAt:  &jwt.NumericDate{Time: time.Now()},
							ExpiresAt: &jwt.NumericDate{Time: exp},
						},
					}
					devJwt, err := jwt.NewWithClaims(jwt.SigningMethodES256, devClaims).SignedString(key)
					if err != nil {
						log.New().WithError(err).AddToContext(r.Context())
						w.WriteHeader(http.StatusUnauthorized)
						return
					}

					c := &http.Cookie{
						Name:     cookieName,
						Value:    devJwt,
						Path:     "/",
						Expires:  exp,
						Secure:   !(r.URL.Host == "localhost" || disableSecure),
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					}
					http.SetCookie(w, c)
					log.New().WithField("dev_user", user).WithField("dev", "success, set cookie").AddToContext(r.Context())
					http.Redirect(w, r, r.URL.String(), http.StatusFound)
					return
				}
				log.New().WithField("dev_user", user).WithField("dev", "wrong password").AddToContext(r.Context())
				w.WriteHeader(http.StatusUnauthorized)
			}
			log.New().WithField("dev", "not logged in, rendering form").AddToContext(r.Context())
			_, _ = io.Copy(w, strings.NewReader(page))
		})
	}
}

func User(ctx context.Context) (string, error) {
	if u, ok := ctx.Value(contextKey{}).(string); ok {
		return u, nil
	}
	return "", errors.New("couldn't get dev user from context, make sure devsession.Middleware has run")
}

const page = `
<!doctype html>
<html>
<head>
   <meta name="viewport" content="width=device-width, initial-scale=1.0">
   <title>cspx Dev Login</title>
</head>
<body>
	<form method="post">
		<div>
			<label for="user">User</label>
			<input type="text" id="user" name="user">
		</div>
		<div>
			<label for="password">Password</label>
			<input type="password" id="password" name="password">
		</div>
		<input type="submit" />
	</form>
</body>
</html>
`
