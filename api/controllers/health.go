package controllers

import (
	"context"
	"net/http"

	"github.com/rvanstaden/huisvind-backend/api/responses"
	"github.com/rvanstaden/huisvind-backend/pkg/config"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Huisvind-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the named dependencies and reports per-dependency state.
// Any failure turns the endpoint into a 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Huisvind-Env", cfg.App.Env)

		statuses := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				statuses[name] = "down"
				healthy = false
				continue
			}
			statuses[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}
