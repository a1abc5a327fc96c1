package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRecorder holds every Record call until release is closed.
type blockingRecorder struct {
	release chan struct{}

	mu      sync.Mutex
	entries []Entry
	err     error
}

func (b *blockingRecorder) Record(ctx context.Context, e Entry) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	return b.err
}

func (b *blockingRecorder) recorded() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.entries...)
}

func TestAsync_RecordDoesNotWaitForWriter(t *testing.T) {
	next := &blockingRecorder{release: make(chan struct{})}
	a := NewAsync(next, 4, time.Second, nil)

	start := time.Now()
	require.NoError(t, a.Record(context.Background(), Entry{RequestID: "req-1"}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(next.release)
	a.Close()
	require.Len(t, next.recorded(), 1)
	assert.Equal(t, "req-1", next.recorded()[0].RequestID)
}

func TestAsync_DropsWhenQueueIsFull(t *testing.T) {
	next := &blockingRecorder{release: make(chan struct{})}
	a := NewAsync(next, 1, time.Second, nil)

	var full bool
	for i := 0; i < 10; i++ {
		if err := a.Record(context.Background(), Entry{}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	assert.True(t, full)

	close(next.release)
	a.Close()
}

func TestAsync_CloseDrainsQueue(t *testing.T) {
	next := &blockingRecorder{release: make(chan struct{})}
	close(next.release)
	a := NewAsync(next, 8, time.Second, nil)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, a.Record(context.Background(), Entry{RequestID: id}))
	}
	a.Close()

	assert.Len(t, next.recorded(), 3)
	assert.ErrorIs(t, a.Record(context.Background(), Entry{}), ErrClosed)
	a.Close()
}

func TestAsync_WriterErrorsAreNotReturned(t *testing.T) {
	next := &blockingRecorder{release: make(chan struct{}), err: errors.New("connection reset")}
	close(next.release)
	a := NewAsync(next, 1, time.Second, nil)

	assert.NoError(t, a.Record(context.Background(), Entry{RequestID: "req-1"}))
	a.Close()
	assert.Len(t, next.recorded(), 1)
}
