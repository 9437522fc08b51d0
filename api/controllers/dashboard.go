package controllers

import (
	"net/http"

	"github.com/rvanstaden/huisvind-backend/api/middleware"
	"github.com/rvanstaden/huisvind-backend/api/responses"
	"github.com/rvanstaden/huisvind-backend/internal/access"
	profilesvc "github.com/rvanstaden/huisvind-backend/internal/profiles"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
)

// DashboardSummary reports the actor's profile and the capability set the
// frontend renders the dashboard from.
func DashboardSummary(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"profile":      profilesvc.FromModel(actor),
			"capabilities": access.Evaluate(actor),
		})
	}
}
