package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-mcp/just-mcp/jmerrors"
)

func TestLimiter_AdmitsUpToConcurrency(t *testing.T) {
	l := newLimiter(2, 10)

	release1, err := l.admit(context.Background(), "a")
	require.NoError(t, err)
	release2, err := l.admit(context.Background(), "b")
	require.NoError(t, err)
	defer release1()
	defer release2()

	// a third caller should block until one of the above releases.
	admitted := make(chan struct{})
	go func() {
		release3, err := l.admit(context.Background(), "c")
		require.NoError(t, err)
		release3()
		close(admitted)
	}()

	select {
	case <-admitted:
		t.Fatal("third caller admitted before a slot freed")
	case <-time.After(50 * time.Millisecond):
	}

	release1()
	select {
	case <-admitted:
	case <-time.After(time.Second):
		t.Fatal("third caller never admitted after a slot freed")
	}
}

func TestLimiter_ContextCancellationUnblocksWaiter(t *testing.T) {
	l := newLimiter(1, 10)
	release, err := l.admit(context.Background(), "holder")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.admit(ctx, "waiter")
	require.Error(t, err)
}

func TestLimiter_RejectsWhenQueueFull(t *testing.T) {
	l := newLimiter(1, 1)
	release, err := l.admit(context.Background(), "holder")
	require.NoError(t, err)
	defer release()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, _ = l.admit(ctx, "first-waiter")
	}()
	// give the first waiter time to register in the queue before the
	// second one arrives and should be rejected outright.
	time.Sleep(20 * time.Millisecond)

	_, err = l.admit(context.Background(), "second-waiter")
	require.Error(t, err)
	var overload *jmerrors.OverloadError
	require.ErrorAs(t, err, &overload)
	assert.Equal(t, 1, overload.QueueLimit)

	wg.Wait()
}
