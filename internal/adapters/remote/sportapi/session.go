package sportapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionCookie is the cookie the backend stores its session token in.
const SessionCookie = "slam"

// Session describes the signed-in user as far as the token tells. The token
// signature is the backend's business; only its claims are read here.
type Session struct {
	UID       int       `json:"uid"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionClaims struct {
	UID int `json:"uid"`
	jwt.RegisteredClaims
}

// ParseSession reads the claims of a session token without verifying it.
func ParseSession(token string) (Session, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, fmt.Errorf("%w: malformed session token: %v", ErrUnauthorized, err)
	}
	s := Session{UID: claims.UID}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Expired reports whether the token is past its expiry at now. Tokens
// without an expiry never expire locally.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Session returns the current session from the cookie jar. It fails with
// ErrUnauthorized when no session cookie is held or the token has expired.
func (c *Client) Session() (Session, error) {
	token, ok := c.sessionToken()
	if !ok {
		return Session{}, fmt.Errorf("%w: not signed in", ErrUnauthorized)
	}
	s, err := ParseSession(token)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(c.now()) {
		return s, fmt.Errorf("%w: session expired at %s", ErrUnauthorized, s.ExpiresAt.Format(time.RFC3339))
	}
	return s, nil
}

// checkSession rejects calls made with a session that has already expired,
// saving a round trip that would end in 401 anyway. Calls without any
// session are left for the backend to judge.
func (c *Client) checkSession() error {
	if _, ok := c.sessionToken(); !ok {
		return nil
	}
	_, err := c.Session()
	return err
}

func (c *Client) sessionToken() (string, bool) {
	if c.http.Jar == nil {
		return "", false
	}
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == SessionCookie && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}

// clearSession drops the session cookie from the jar.
func (c *Client) clearSession() {
	if c.http.Jar == nil {
		return
	}
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1}})
}
