package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "protekt/pkg/domain-errors"
)

type counterStore struct {
	mu    sync.Mutex
	value int
}

func (c *counterStore) Snapshot() func() {
	c.mu.Lock()
	saved := c.value
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.value = saved
		c.mu.Unlock()
	}
}

func (c *counterStore) add(n int) {
	c.mu.Lock()
	c.value += n
	c.mu.Unlock()
}

func TestMemoryRunner(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		store := &counterStore{}
		runner := NewMemoryRunner(store)

		err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
			store.add(2)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, store.value)
	})

	t.Run("restores snapshot when fn fails", func(t *testing.T) {
		store := &counterStore{value: 5}
		runner := NewMemoryRunner(store)
		boom := errors.New("boom")

		err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
			store.add(10)
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 5, store.value)
	})

	t.Run("nested call joins the outer unit of work", func(t *testing.T) {
		store := &counterStore{}
		runner := NewMemoryRunner(store)

		err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
			store.add(1)
			if err := runner.RunInTx(ctx, func(ctx context.Context) error {
				store.add(1)
				return nil
			}); err != nil {
				return err
			}
			return errors.New("outer fails")
		})
		require.Error(t, err)
		assert.Equal(t, 0, store.value)
	})

	t.Run("rejects cancelled context", func(t *testing.T) {
		runner := NewMemoryRunner()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("serialises concurrent units of work", func(t *testing.T) {
		store := &counterStore{}
		runner := NewMemoryRunner(store)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = runner.RunInTx(context.Background(), func(ctx context.Context) error {
					store.add(1)
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, store.value)
	})
}
