package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, newRecord("old@x.com", "1", baseTime.Add(-time.Minute))))
	require.NoError(t, s.Put(ctx, newRecord("new@x.com", "1", baseTime.Add(time.Minute))))

	sw := NewSweeper(s, time.Minute, logging.NewNop())
	sw.now = func() time.Time { return baseTime }

	assert.Equal(t, 1, sw.SweepOnce(ctx))
	assert.Equal(t, 1, s.Len())
}

type countingStore struct {
	*MemoryStore
	calls chan struct{}
	err   error
}

func (c *countingStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return 0, c.err
}

func TestSweeper_RunTicksUntilCancelled(t *testing.T) {
	cs := &countingStore{MemoryStore: NewMemoryStore(), calls: make(chan struct{}, 1), err: errors.New("transient")}
	sw := NewSweeper(cs, 5*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	select {
	case <-cs.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
