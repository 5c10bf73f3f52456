package executor

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/just-mcp/just-mcp/jmerrors"
)

const (
	defaultConcurrency = 10
	defaultQueueLimit  = 100
)

// limiter is the admission-control gate in front of process spawning:
// a weighted semaphore bounds concurrent executions, and a separate
// atomic counter bounds how many callers may wait for a slot at once.
// A request that arrives once the queue is already at QueueLimit is
// rejected immediately with an OverloadError rather than blocked.
type limiter struct {
	sem        *semaphore.Weighted
	queueLimit int
	queued     atomic.Int64
}

func newLimiter(concurrency, queueLimit int) *limiter {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if queueLimit <= 0 {
		queueLimit = defaultQueueLimit
	}
	return &limiter{
		sem:        semaphore.NewWeighted(int64(concurrency)),
		queueLimit: queueLimit,
	}
}

// admit blocks (FIFO, via the underlying semaphore's wait list) until a
// slot is available, ctx is cancelled, or the queue is already full. On
// success the caller must call the returned release func exactly once.
//
// A slot that is immediately available never touches the queue depth
// counter at all, so queueLimit bounds only callers actually waiting
// behind a full pool, not the pool's own concurrency.
func (l *limiter) admit(ctx context.Context, tool string) (release func(), err error) {
	if l.sem.TryAcquire(1) {
		return l.releaseFunc(), nil
	}

	depth := l.queued.Add(1)
	defer l.queued.Add(-1)
	if int(depth) > l.queueLimit {
		return nil, &jmerrors.OverloadError{QueueDepth: int(depth), QueueLimit: l.queueLimit}
	}

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("admission for %q: %w", tool, err)
	}
	return l.releaseFunc(), nil
}

func (l *limiter) releaseFunc() func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		l.sem.Release(1)
	}
}
