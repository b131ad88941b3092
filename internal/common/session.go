package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session carries the credential for one client session. It is built once
// and handed to the gateway at construction; a rotated token needs a new
// Session and a new gateway.
type Session struct {
	Token     string
	UserID    string    // "sub" claim when the token is a JWT
	ExpiresAt time.Time // "exp" claim when present
}

// NewSession builds a Session from a bearer token. JWT claims are read
// without verification; the server owns validation. Opaque tokens are kept
// as-is with no claims. An empty token yields an anonymous session.
func NewSession(token string) *Session {
	s := &Session{Token: strings.TrimSpace(token)}
	if s.Token == "" {
		return s
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return s
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		s.UserID = sub
	} else if uid, ok := claims["user_id"]; ok {
		switch v := uid.(type) {
		case float64:
			s.UserID = strconv.FormatInt(int64(v), 10)
		case string:
			s.UserID = v
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s
}

// Authenticated reports whether a bearer token is attached.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// AuthorizationHeader returns the header value, or "" for anonymous sessions.
func (s *Session) AuthorizationHeader() string {
	if !s.Authenticated() {
		return ""
	}
	return "Bearer " + s.Token
}

// Expired reports whether the token carries an exp claim that has passed.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
