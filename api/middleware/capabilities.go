package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/api/responses"
	"github.com/rvanstaden/huisvind-backend/internal/access"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
)

type profileLoader interface {
	Load(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error)
}

// LoadActor fetches the caller's profile and stores it in the context. It
// requires Auth to have run first. An absent profile still passes through;
// downstream capability checks decide what that means.
func LoadActor(loader profileLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := UserIDFromContext(r.Context())
			if uid == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			profile, err := loader.Load(r.Context(), uid)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), profile)))
		})
	}
}

// RequireCapability gates a route behind a per-request guard. The guard
// resolves from the actor loaded by LoadActor and fails closed: no actor in
// context resolves to denied.
func RequireCapability(requirement access.Requirement, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard := access.NewGuard(requirement)
			if guard.Resolve(ActorFromContext(r.Context()), nil) != access.DecisionGranted {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
