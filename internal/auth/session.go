package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an access token cannot be decoded
var ErrInvalidToken = errors.New("invalid access token")

// Session is an authenticated user session minted by the external auth
// provider. The dashboard only reads it; verification belongs to the API.
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	Name        string // user_metadata.display_name
	ExpiresAt   time.Time
}

// DisplayName returns the display name, falling back to the email
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// Expired reports whether the token's exp claim is in the past
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// CredentialProvider yields the current session, or nil when anonymous
// ⭐ SSOT: adapters get credentials only through this interface
type CredentialProvider interface {
	Session(ctx context.Context) *Session
}

// ParseToken decodes the claims of a JWT access token without verifying
// its signature
func ParseToken(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	s := &Session{AccessToken: token}
	s.UserID, _ = claims.GetSubject()
	if email, ok := claims["email"].(string); ok {
		s.Email = email
	}
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		if name, ok := meta["display_name"].(string); ok {
			s.Name = name
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}

	return s, nil
}

// Static always yields the same session. The CLI uses it with the token
// from RANKER_ACCESS_TOKEN.
type Static struct {
	session *Session
}

// NewStatic builds a provider from a raw token. An empty token means
// anonymous. Tokens that are not JWTs are still sent as opaque bearers.
func NewStatic(token string) *Static {
	return &Static{session: FromToken(token)}
}

// FromToken builds a session from a raw token: nil when empty, decoded
// claims for a JWT, a bare bearer otherwise
func FromToken(token string) *Session {
	if token == "" {
		return nil
	}
	s, err := ParseToken(token)
	if err != nil {
		return &Session{AccessToken: token}
	}
	return s
}

// Session implements CredentialProvider
func (p *Static) Session(context.Context) *Session {
	return p.session
}

type contextKey struct{}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// Context reads the session placed on the request context by the HTTP
// layer
type Context struct{}

// Session implements CredentialProvider
func (Context) Session(ctx context.Context) *Session {
	return FromContext(ctx)
}
