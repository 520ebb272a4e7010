package tx

import (
	"context"
	"database/sql"
	"time"

	dErrors "protekt/pkg/domain-errors"
)

// Runner provides an atomic boundary for store mutations. Every store call made
// with the context passed to fn participates in the same unit of work.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultTimeout bounds a transaction when the caller set no deadline.
const DefaultTimeout = 5 * time.Second

// SQLRunner runs fn inside a database/sql transaction carried in the context.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

type SQLRunnerOption func(*SQLRunner)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) SQLRunnerOption {
	return func(r *SQLRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewSQLRunner(db *sql.DB, opts ...SQLRunnerOption) *SQLRunner {
	r := &SQLRunner{db: db, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunInTx joins an outer transaction when ctx already carries one.
func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "commit transaction")
	}
	return nil
}
