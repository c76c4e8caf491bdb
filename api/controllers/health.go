package controllers

import (
	"context"
	"net/http"

	"github.com/bsthardware/storefront-backend/api/responses"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

// Pinger is implemented by every dependency readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady pings every registered dependency. A nil pinger counts as down.
func HealthReady(logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failed := map[string]string{}
		for name, p := range checks {
			if p == nil {
				failed[name] = "not connected"
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
