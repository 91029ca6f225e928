package auth

import (
	"context"

	"github.com/canteenrush/canteenrush/internal/model"
)

type sessionKey struct{}

// ContextWithSession attaches the authenticated session to a request context.
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session set by the Session middleware, or nil.
// Services reject a nil session with ErrUnauthorized, so handlers pass it through unchecked.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionKey{}).(*model.Session)
	return sess
}
