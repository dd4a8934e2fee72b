package api

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/identity"
)

// Claims is the JWT payload this service consumes. Credential verification
// belongs to the issuing side; the domain layer only ever sees the resulting
// (user id, roles) pair.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Authenticator verifies the bearer token and installs the caller identity
// into the request context.
func Authenticator(signingKey []byte, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, logger, apperr.Unauthorized("missing authorization header"))
				return
			}
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				writeError(w, logger, apperr.Unauthorized("authorization header must be a bearer token"))
				return
			}

			var claims Claims
			parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return signingKey, nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				writeError(w, logger, apperr.Unauthorized("invalid credential"))
				return
			}

			ctx := identity.WithIdentity(r.Context(), identity.Identity{
				UserID: claims.Subject,
				Roles:  claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
