package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/shared/config"
	"kinora/internal/shared/logger"
)

func newTestDispatcher(workers, queueSize int) *Dispatcher {
	return NewDispatcher(&config.WorkerConfig{
		TranscodeWorkers: workers,
		QueueSize:        queueSize,
	}, logger.NewLogger())
}

func TestDispatcherRunsSubmittedJobs(t *testing.T) {
	d := newTestDispatcher(2, 4)
	d.Start()

	var mu sync.Mutex
	seen := make(map[uint]bool)
	var wg sync.WaitGroup

	for id := uint(1); id <= 4; id++ {
		id := id
		wg.Add(1)
		err := d.Submit(Job{
			MovieID: id,
			Run: func(ctx context.Context) {
				defer wg.Done()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			},
		})
		require.NoError(t, err)
	}

	wg.Wait()
	d.Shutdown()

	assert.Len(t, seen, 4)
}

func TestDispatcherRejectsBusyTitle(t *testing.T) {
	d := newTestDispatcher(1, 4)
	d.Start()
	defer d.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, d.Submit(Job{
		MovieID: 7,
		Run: func(ctx context.Context) {
			close(started)
			<-release
		},
	}))
	<-started

	assert.True(t, d.Busy(7))
	err := d.Submit(Job{MovieID: 7, Run: func(ctx context.Context) {}})
	assert.ErrorIs(t, err, ErrTitleBusy)

	close(release)
}

func TestDispatcherRejectsWhenQueueFull(t *testing.T) {
	d := newTestDispatcher(1, 1)
	d.Start()
	defer d.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker, then fill the single queue slot.
	require.NoError(t, d.Submit(Job{
		MovieID: 1,
		Run: func(ctx context.Context) {
			close(started)
			<-release
		},
	}))
	<-started
	require.NoError(t, d.Submit(Job{MovieID: 2, Run: func(ctx context.Context) {}}))

	err := d.Submit(Job{MovieID: 3, Run: func(ctx context.Context) {}})
	assert.ErrorIs(t, err, ErrQueueFull)

	// The rejected movie must be free to retry once capacity returns.
	assert.False(t, d.Busy(3))

	close(release)
}

func TestDispatcherRejectsSubmitAfterShutdown(t *testing.T) {
	d := newTestDispatcher(1, 2)
	d.Start()
	d.Shutdown()

	err := d.Submit(Job{MovieID: 1, Run: func(ctx context.Context) {}})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.False(t, d.Busy(1))

	// A second Shutdown must not panic on the already-closed queue.
	d.Shutdown()
}

func TestDispatcherReleasesTitleAfterCompletion(t *testing.T) {
	d := newTestDispatcher(1, 2)
	d.Start()

	done := make(chan struct{})
	require.NoError(t, d.Submit(Job{
		MovieID: 9,
		Run:     func(ctx context.Context) { close(done) },
	}))
	<-done

	assert.Eventually(t, func() bool { return !d.Busy(9) }, time.Second, 5*time.Millisecond)
	d.Shutdown()
}

func TestDispatcherReleasesTitleAfterPanic(t *testing.T) {
	d := newTestDispatcher(1, 2)
	d.Start()

	require.NoError(t, d.Submit(Job{
		MovieID: 5,
		Run:     func(ctx context.Context) { panic("encode blew up") },
	}))

	assert.Eventually(t, func() bool { return !d.Busy(5) }, time.Second, 5*time.Millisecond)

	// The worker must survive the panic and keep serving jobs.
	done := make(chan struct{})
	require.NoError(t, d.Submit(Job{
		MovieID: 5,
		Run:     func(ctx context.Context) { close(done) },
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover after panic")
	}

	d.Shutdown()
}
