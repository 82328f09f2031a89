package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

type key string

const sessionKey key = "session"

// WithSession stores the authenticated session in ctx.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by JWTMiddleware.
func SessionFrom(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok && s.UserID != 0
}

// ActorFrom returns the caller as an access policy actor.
func ActorFrom(ctx context.Context) (policy.Actor, bool) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return policy.Actor{}, false
	}
	return policy.Actor{ID: s.UserID, Role: s.Role}, true
}
