package viewstate

import "context"

type ctxKey struct{}

// WithSession attaches the view session to ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the view session attached to ctx, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
