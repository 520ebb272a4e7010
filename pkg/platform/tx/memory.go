package tx

import (
	"context"
	"sync"

	dErrors "protekt/pkg/domain-errors"
)

// Snapshotter is implemented by in-memory stores that take part in a
// MemoryRunner transaction. Snapshot captures current state and returns a
// function that restores it.
type Snapshotter interface {
	Snapshot() (restore func())
}

type memTxKey struct{}

// MemoryRunner serialises units of work with a single lock and restores every
// participant's snapshot when fn fails.
type MemoryRunner struct {
	mu           sync.Mutex
	participants []Snapshotter
}

func NewMemoryRunner(participants ...Snapshotter) *MemoryRunner {
	return &MemoryRunner{participants: participants}
}

// Register adds stores after construction.
func (r *MemoryRunner) Register(participants ...Snapshotter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = append(r.participants, participants...)
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	restores := make([]func(), 0, len(r.participants))
	for _, p := range r.participants {
		restores = append(restores, p.Snapshot())
	}

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
