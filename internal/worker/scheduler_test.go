package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/service"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type sweeperStub struct {
	calls  atomic.Int32
	result *service.SweepResult
	err    error
}

func (s *sweeperStub) Sweep(context.Context) (*service.SweepResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func TestSweepJob(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &sweeperStub{result: &service.SweepResult{Expired: 2, Activated: 1}}
		require.NoError(t, SweepJob(stub, quietLogger)(context.Background()))
		assert.Equal(t, int32(1), stub.calls.Load())
	})

	t.Run("error is wrapped", func(t *testing.T) {
		failure := errors.New("db down")
		stub := &sweeperStub{err: failure}
		err := SweepJob(stub, quietLogger)(context.Background())
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "lease sweep")
	})
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(quietLogger, time.Second)
	err := s.Add("sweep", "every tuesday", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep")
}

func TestScheduler_RunsAndShutsDown(t *testing.T) {
	s := NewScheduler(quietLogger, time.Second)

	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	s.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestScheduler_ShutdownCancelsRunningJob(t *testing.T) {
	s := NewScheduler(quietLogger, time.Minute)

	started := make(chan struct{})
	var once atomic.Bool
	require.NoError(t, s.Add("slow", "@every 1s", func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	}))
	s.Start()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
