// Package recognition defines the contract for turning workout screenshots into sport records.
package recognition

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slamweb/slam/internal/domain/sport"
)

const (
	defaultMaxImages    = 9
	defaultMaxImageSize = 10 << 20
)

// Image is one uploaded picture.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is what a recognizer extracted.
type Result struct {
	Sport     *sport.Sport
	RequestID string
}

// Recognizer extracts a sport record from images. Implementations call an
// external AI service and must honor ctx for cancellation.
type Recognizer interface {
	Recognize(ctx context.Context, images []Image) (Result, error)
}

// Option configures a Guard.
type Option func(*Guard)

// WithTimeout bounds each recognition call.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLimits caps the image count and the size of each image.
func WithLimits(maxImages, maxImageSize int) Option {
	return func(g *Guard) {
		if maxImages > 0 {
			g.maxImages = maxImages
		}
		if maxImageSize > 0 {
			g.maxImageSize = maxImageSize
		}
	}
}

// WithClock replaces time.Now, used to fill missing start times.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// Guard wraps a Recognizer: it validates uploads, applies the timeout and
// normalizes whatever the service returns into a well-typed draft record.
type Guard struct {
	next         Recognizer
	defaults     func(sport.SportType) sport.Extra
	timeout      time.Duration
	maxImages    int
	maxImageSize int
	now          func() time.Time
}

// NewGuard wraps next. defaults supplies the payload for types whose payload
// is missing or of the wrong variant.
func NewGuard(next Recognizer, defaults func(sport.SportType) sport.Extra, opts ...Option) *Guard {
	g := &Guard{
		next:         next,
		defaults:     defaults,
		timeout:      300 * time.Second,
		maxImages:    defaultMaxImages,
		maxImageSize: defaultMaxImageSize,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check validates an upload without calling the service.
func (g *Guard) Check(images []Image) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	if len(images) > g.maxImages {
		return fmt.Errorf("%w: %d images, at most %d", ErrTooManyImages, len(images), g.maxImages)
	}
	for i, img := range images {
		if len(img.Data) == 0 {
			return fmt.Errorf("%w: image %d is empty", ErrNotImage, i)
		}
		if len(img.Data) > g.maxImageSize {
			return fmt.Errorf("%w: image %d is %d bytes", ErrImageTooLarge, i, len(img.Data))
		}
		ct := img.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(img.Data)
		}
		if !strings.HasPrefix(ct, "image/") {
			return fmt.Errorf("%w: image %d has content type %s", ErrNotImage, i, ct)
		}
	}
	return nil
}

// Recognize validates, calls the wrapped recognizer and normalizes the record.
func (g *Guard) Recognize(ctx context.Context, images []Image) (Result, error) {
	if err := g.Check(images); err != nil {
		return Result{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.next.Recognize(ctx, images)
	if err != nil {
		return Result{}, err
	}
	if res.Sport == nil {
		return Result{}, fmt.Errorf("%w: request %s", ErrEmptyResult, res.RequestID)
	}
	Normalize(res.Sport, g.now(), g.defaults)
	return res, nil
}

// Normalize turns a recognized record into a new draft: it drops the id,
// canonicalizes the type, replaces foreign payloads and fills a missing start time.
func Normalize(s *sport.Sport, now time.Time, defaults func(sport.SportType) sport.Extra) {
	s.ID = 0
	s.Retype(s.Kind(), defaults)
	if s.Tracks == nil {
		s.Tracks = []sport.Track{}
	}
	if s.StartTime <= 0 {
		s.StartTime = now.Unix()
	}
	if s.PaceAverage == "" {
		s.PaceAverage = sport.ZeroPace
	}
}
