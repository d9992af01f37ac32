package image

import (
	"context"
	"errors"
	stdimage "image"
)

// Service classifies camera frames.
type Service interface {
	// ImageContainsCat reports whether img shows a cat with at least
	// confidenceThreshold percent confidence.
	ImageContainsCat(ctx context.Context, img stdimage.Image, confidenceThreshold float32) (bool, error)
}

// ErrImageRequired is returned when a nil image is classified.
var ErrImageRequired = errors.New("image is required")
