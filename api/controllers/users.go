package controllers

import (
	"net/http"

	"github.com/bsthardware/storefront-backend/api/responses"
	"github.com/bsthardware/storefront-backend/api/validators"
	"github.com/bsthardware/storefront-backend/internal/users"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UsersDelete removes a customer together with their cart, cart
// notifications and canvass requests.
func UsersDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": "User deleted successfully", "id": id})
	}
}
