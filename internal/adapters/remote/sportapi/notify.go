package sportapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slamweb/slam/internal/i18n"
)

// UserMessage turns a client error into the toast text shown to the user.
// It is empty for errors the user should not be told about: a missing
// session (the shell redirects to login instead) and cancellations.
func UserMessage(lang i18n.Lang, err error) string {
	var re *RemoteError
	switch {
	case err == nil, errors.Is(err, ErrUnauthorized), errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, ErrTimeout):
		return i18n.Label(lang, "errors.timeout")
	case errors.Is(err, ErrServerBusy):
		return i18n.Label(lang, "errors.busy")
	case errors.As(err, &re):
		if re.Message != "" {
			return re.Message
		}
		if re.Key != "" {
			return i18n.Label(lang, re.Key)
		}
	}
	return i18n.Label(lang, "errors.network")
}

// Notifier fans user-facing messages out to listeners, dropping a message
// identical to the previous one if it repeats within the window.
type Notifier struct {
	mu         sync.Mutex
	window     time.Duration
	now        func() time.Time
	last       string
	lastAt     time.Time
	nextID     int
	listeners  map[int]func(string)
	suppressed int64
}

// NewNotifier creates a notifier. window <= 0 uses three seconds.
func NewNotifier(window time.Duration, now func() time.Time) *Notifier {
	if window <= 0 {
		window = 3 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Notifier{window: window, now: now, listeners: make(map[int]func(string))}
}

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn func(msg string)) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// Emit delivers msg to every listener. Empty and repeated messages are
// dropped; Emit reports whether msg was delivered.
func (n *Notifier) Emit(msg string) bool {
	if msg == "" {
		return false
	}
	n.mu.Lock()
	now := n.now()
	if msg == n.last && now.Sub(n.lastAt) < n.window {
		n.suppressed++
		n.mu.Unlock()
		return false
	}
	n.last, n.lastAt = msg, now
	fns := make([]func(string), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
	return true
}

// Suppressed counts the messages dropped as repeats.
func (n *Notifier) Suppressed() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.suppressed
}
