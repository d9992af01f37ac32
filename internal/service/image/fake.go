package image

import (
	"context"
	stdimage "image"
	"math/rand/v2"
	"sync"
	"time"
)

// FakeService returns a random verdict regardless of the image content.
type FakeService struct {
	// random is the verdict source.
	random *rand.Rand
	// mu protects random, which is not safe for concurrent use.
	mu sync.Mutex
}

// NewFakeService creates a fake seeded from the current time.
func NewFakeService() *FakeService {
	seed := uint64(time.Now().UnixNano())

	return NewSeededFakeService(seed)
}

// NewSeededFakeService creates a fake with a reproducible verdict sequence.
func NewSeededFakeService(seed uint64) *FakeService {
	return &FakeService{
		random: rand.New(rand.NewPCG(seed, seed)), //nolint:gosec // Not used for security.
	}
}

// ImageContainsCat returns a random verdict.
func (f *FakeService) ImageContainsCat(_ context.Context, img stdimage.Image, _ float32) (bool, error) {
	if img == nil {
		return false, ErrImageRequired
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.random.IntN(2) == 1, nil
}
