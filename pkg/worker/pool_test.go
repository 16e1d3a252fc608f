package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPool(t *testing.T, workers, queue int) *Pool {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(workers, queue)
	p.Start(ctx)
	t.Cleanup(func() {
		cancel()
		p.Stop()
	})
	return p
}

func TestDispatchRunsHandler(t *testing.T) {
	p := startPool(t, 2, 8)

	done := make(chan struct{})
	ok := p.TryDispatch(Job{Key: "music", Handler: func(context.Context) error {
		close(done)
		return nil
	}})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestSameKeySerializes(t *testing.T) {
	p := startPool(t, 4, 16)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		p.TryDispatch(Job{Key: "same-key", Handler: func(context.Context) error {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}})
	}
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2}, order, "jobs with one key must run in dispatch order")
}

func TestDoReturnsHandlerError(t *testing.T) {
	p := startPool(t, 2, 8)

	wantErr := errors.New("automation failed")
	err := p.Do(context.Background(), "screenshot", func(context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	err = p.Do(context.Background(), "screenshot", func(context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	p := startPool(t, 1, 8)

	p.TryDispatch(Job{Key: "a", Handler: func(context.Context) error {
		panic("boom")
	}})

	done := make(chan struct{})
	p.TryDispatch(Job{Key: "a", Handler: func(context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}

	assert.GreaterOrEqual(t, p.GetStats().TotalErrors, int64(1))
}

func TestDispatchAfterStopIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(1, 4)
	p.Start(ctx)
	cancel()
	p.Stop()

	ok := p.TryDispatch(Job{Key: "late", Handler: func(context.Context) error { return nil }})
	assert.False(t, ok)
	assert.GreaterOrEqual(t, p.GetStats().TotalDropped, int64(1))
}
