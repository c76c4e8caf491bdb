package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bsthardware/storefront-backend/api/responses"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. Upgraded websocket
// connections no longer own a response body, so only the log is written.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", rec), "panic")
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"panic": rec, "route": r.URL.Path})
				}
				if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
					if logg != nil {
						logg.Error(ctx, "panic in stream handler", err)
					}
					return
				}
				responses.WriteError(ctx, logg, w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
