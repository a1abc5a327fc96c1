package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when an entry is dropped because the writer is behind.
	ErrQueueFull = errors.New("journal queue is full")
	// ErrClosed is returned by Record after Close.
	ErrClosed = errors.New("journal is closed")
)

// Async hands entries to a background writer so recording never waits on the
// underlying Recorder. Entries that do not fit in the queue are dropped.
type Async struct {
	next    Recorder
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	entries chan Entry
	done    chan struct{}
}

// NewAsync starts a writer that forwards entries to next, each bounded by timeout.
func NewAsync(next Recorder, queueSize int, timeout time.Duration, logger *zap.Logger) *Async {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		logger:  logger,
		entries: make(chan Entry, queueSize),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Record queues e and returns immediately.
func (a *Async) Record(_ context.Context, e Entry) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.entries <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting entries and waits for queued ones to be written.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.entries)
	}
	a.mu.Unlock()
	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.entries {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Record(ctx, e); err != nil {
			a.logger.Warn("failed to record request",
				zap.String("request_id", e.RequestID),
				zap.Error(err),
			)
		}
		cancel()
	}
}
