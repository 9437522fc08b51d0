package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxSessionID contextKey = "session_id"
	ctxActor     contextKey = "actor_profile"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the access token's jti for the request.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the loaded profile of the authenticated caller,
// or nil when no profile middleware ran on this route.
func ActorFromContext(ctx context.Context) *models.UserProfile {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*models.UserProfile); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithActor injects the loaded actor profile into the context.
func WithActor(ctx context.Context, profile *models.UserProfile) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, profile)
}
