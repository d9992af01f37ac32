package security

import (
	"context"
	"slices"

	"github.com/oshokin/home-security/internal/logger"
)

// step is a write paired with the write that reverts it.
type step struct {
	// name describes the write in logs.
	name string
	// undo reverts the write.
	undo func(ctx context.Context) error
}

// unitOfWork applies repository writes and reverts them when a later write fails.
type unitOfWork struct {
	// done holds the applied steps in order.
	done []step
}

// do runs apply and remembers undo on success. On failure the already applied
// steps are reverted in reverse order and the apply error is returned.
func (u *unitOfWork) do(
	ctx context.Context,
	name string,
	apply func(ctx context.Context) error,
	undo func(ctx context.Context) error,
) error {
	if err := apply(ctx); err != nil {
		u.rollback(ctx)

		return err
	}

	u.done = append(u.done, step{name: name, undo: undo})

	return nil
}

// rollback reverts every applied step. Failures are logged, the caller
// already has the error that triggered the rollback.
func (u *unitOfWork) rollback(ctx context.Context) {
	// Cancellation of the request must not leave half an event behind.
	ctx = context.WithoutCancel(ctx)

	for _, s := range slices.Backward(u.done) {
		if err := s.undo(ctx); err != nil {
			logger.ErrorKV(ctx, "Rollback step failed", "step", s.name, "error", err)
		}
	}

	u.done = nil
}
