package middleware

import (
	"net/http"
	"strings"

	"github.com/bsthardware/storefront-backend/api/responses"
	pkgAuth "github.com/bsthardware/storefront-backend/pkg/auth"
	"github.com/bsthardware/storefront-backend/pkg/auth/session"
	"github.com/bsthardware/storefront-backend/pkg/config"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

const (
	msgNoToken     = "Not authorized, no token provided"
	msgTokenFailed = "Not authorized, token failed or expired"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Every request leaves through exactly one path: a 401 or the next handler.
// A nil verifier skips the revocation check.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNoToken))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgTokenFailed))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.TokenID())
				if err != nil {
					// fail closed: an unverifiable session is treated as revoked
					if logg != nil {
						logg.Error(r.Context(), "auth.session_check_failed", err)
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgTokenFailed))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenFailed))
					return
				}
			}

			ctx := WithIdentity(r.Context(), claims.ID.String(), claims.Role)
			ctx = withTokenID(ctx, claims.TokenID())

			if logg != nil {
				ctx = logg.WithActor(ctx, claims.ID.String(), string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}
