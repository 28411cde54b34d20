package sportapi

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrUnauthorized is returned for HTTP 401 and for a locally expired session cookie.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTimeout is returned when the request deadline passed or the gateway timed out.
	ErrTimeout = errors.New("request timed out")
	// ErrServerBusy is returned for 5xx responses other than 504.
	ErrServerBusy = errors.New("server busy")
	// ErrNetwork is returned when the backend could not be reached.
	ErrNetwork = errors.New("network error")
	// ErrRemote is matched by every *RemoteError.
	ErrRemote = errors.New("remote error")
	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("decode response")
	// ErrInvalidBaseURL is returned by New for an unusable base URL.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrMaxRetries is returned when every retry attempt failed.
	ErrMaxRetries = errors.New("max retry exceeded")
)

var timeoutText = regexp.MustCompile(`(?i)timeout|超时`)

// RemoteError is a failure reported by the backend itself: a {success:false}
// envelope or a 4xx response. Key names the localized fallback message used
// when the backend sent none.
type RemoteError struct {
	Status    int
	Code      string
	Message   string
	Details   string
	RequestID string
	Key       string
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Key
	}
	if e.Code != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("remote error %d: %s", e.Status, msg)
}

// Is matches ErrRemote, and ErrTimeout when the backend reported a timeout of
// its own (code TIMEOUT or a timeout message).
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrTimeout:
		return e.Code == "TIMEOUT" || timeoutText.MatchString(e.Message)
	}
	return false
}
