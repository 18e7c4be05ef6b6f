package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	failures int
	calls    int
	block    bool
	lastTo   string
	lastCode string
}

func (f *fakeNotifier) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	f.mu.Lock()
	f.calls++
	f.lastTo, f.lastCode = to, code
	fail := f.calls <= f.failures
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail {
		return errors.New("smtp 451")
	}
	return nil
}

func TestDispatch_SucceedsAfterRetries(t *testing.T) {
	n := &fakeNotifier{failures: 2}
	d := NewDispatcher(n, 3, time.Millisecond, time.Second)

	require.NoError(t, d.Dispatch(context.Background(), "ana@x.com", "1234", 10*time.Minute))
	assert.Equal(t, 3, n.calls)
	assert.Equal(t, "ana@x.com", n.lastTo)
	assert.Equal(t, "1234", n.lastCode)
}

func TestDispatch_GivesUpAfterAttempts(t *testing.T) {
	n := &fakeNotifier{failures: 100}
	d := NewDispatcher(n, 3, time.Millisecond, time.Second)

	err := d.Dispatch(context.Background(), "ana@x.com", "1234", time.Minute)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Equal(t, 3, n.calls)
}

func TestDispatch_BoundedByTimeout(t *testing.T) {
	n := &fakeNotifier{block: true}
	d := NewDispatcher(n, 5, time.Millisecond, 20*time.Millisecond)

	start := time.Now()
	err := d.Dispatch(context.Background(), "ana@x.com", "1234", time.Minute)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatch_NotConfigured(t *testing.T) {
	d := NewDispatcher(nil, 3, time.Millisecond, time.Second)
	assert.False(t, d.Configured())
	assert.ErrorIs(t, d.Dispatch(context.Background(), "a@b.c", "1", time.Minute), common.ErrUpstream)

	var nilDispatcher *Dispatcher
	assert.False(t, nilDispatcher.Configured())
}

func TestNewDispatcher_ClampsAttempts(t *testing.T) {
	n := &fakeNotifier{failures: 100}
	d := NewDispatcher(n, 0, time.Millisecond, time.Second)

	_ = d.Dispatch(context.Background(), "a@b.c", "1", time.Minute)
	assert.Equal(t, 1, n.calls)
}
