package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/bsthardware/storefront-backend/api/responses"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

// RequireRoles must run after Auth.
func RequireRoles(logg *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	required := make([]string, 0, len(allowed))
	for _, role := range allowed {
		required = append(required, role.String())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual := RoleFromContext(r.Context())
			if !slices.Contains(required, actual) {
				err := pkgerrors.New(
					pkgerrors.CodeForbidden,
					fmt.Sprintf("Access denied. Your role (%s) is not authorized to access this resource.", actual),
				).WithDetails(map[string]any{"required": required, "actual": actual})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
