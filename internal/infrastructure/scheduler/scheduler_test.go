package scheduler

import (
	"context"
	"errors"
	"runtime/pprof"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsNonPositiveInterval(t *testing.T) {
	s := New(nil)
	err := s.Register(JobFunc{JobName: "x", Fn: func(context.Context) error { return nil }}, 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestRunNow_TracksState(t *testing.T) {
	s := New(nil)
	calls := 0
	require.NoError(t, s.Register(JobFunc{JobName: "sweep", Fn: func(context.Context) error {
		calls++
		if calls == 2 {
			return errors.New("db down")
		}
		return nil
	}}, time.Hour))

	require.NoError(t, s.RunNow(context.Background(), "sweep"))
	state := s.States()[0]
	assert.Equal(t, JobStatusSuccess, state.Status)
	assert.Equal(t, 1, state.Runs)

	require.Error(t, s.RunNow(context.Background(), "sweep"))
	state = s.States()[0]
	assert.Equal(t, JobStatusFailed, state.Status)
	assert.Equal(t, "db down", state.LastError)
	assert.Equal(t, 1, state.Failures)

	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Register(JobFunc{JobName: "bad", Fn: func(context.Context) error { panic("oops") }}, time.Hour))

	err := s.RunNow(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestStartStop_RunsOnTicker(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	require.NoError(t, s.Register(JobFunc{JobName: "tick", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}}, 5*time.Millisecond, RunOnStart()))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestWithTimeout_BoundsRun(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Register(JobFunc{JobName: "slow", Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}, time.Hour, WithTimeout(10*time.Millisecond)))

	err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_LabelsProfilesWithJobName(t *testing.T) {
	s := New(nil)
	var label string
	require.NoError(t, s.Register(JobFunc{JobName: "overdue-sweep", Fn: func(ctx context.Context) error {
		label, _ = pprof.Label(ctx, "operation")
		return nil
	}}, time.Hour))

	require.NoError(t, s.RunNow(context.Background(), "overdue-sweep"))
	assert.Equal(t, "overdue-sweep", label)
}
