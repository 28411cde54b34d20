package recognition

import "errors"

var (
	ErrNoImages      = errors.New("no images")
	ErrTooManyImages = errors.New("too many images")
	ErrImageTooLarge = errors.New("image too large")
	ErrNotImage      = errors.New("not an image")
	ErrEmptyResult   = errors.New("recognition returned no record")
)
