package sportapi

import (
	"net/http"
	"time"

	"github.com/slamweb/slam/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the client has none, since the session lives in a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds ordinary calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAITimeout bounds image recognition calls.
func WithAITimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.aiTimeout = d
		}
	}
}

// WithImportTimeout bounds vendor file imports.
func WithImportTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.importTimeout = d
		}
	}
}

// WithAvatarTimeout bounds avatar uploads.
func WithAvatarTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.avatarTimeout = d
		}
	}
}

// WithMaxRetries sets how many times a GET is retried after a transport error or 5xx.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the first retry delay; each further retry doubles it.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBase = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
