// Package scheduler runs periodic background jobs on tickers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobStatus is the outcome of a job's last run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns JobName
func (j JobFunc) Name() string { return j.JobName }

// Run calls Fn
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// JobState is the observable state of a registered job
type JobState struct {
	Name        string        `json:"name"`
	Interval    time.Duration `json:"interval"`
	Status      JobStatus     `json:"status"`
	LastError   string        `json:"last_error,omitempty"`
	LastStarted *time.Time    `json:"last_started,omitempty"`
	LastEnded   *time.Time    `json:"last_ended,omitempty"`
	Runs        int           `json:"runs"`
	Failures    int           `json:"failures"`
}

type entry struct {
	job      Job
	interval time.Duration
	runNow   bool
	timeout  time.Duration
	state    JobState
}

// JobOption configures a registered job
type JobOption func(*entry)

// RunOnStart runs the job immediately on Start, before the first tick
func RunOnStart() JobOption {
	return func(e *entry) {
		e.runNow = true
	}
}

// WithTimeout bounds each run of the job
func WithTimeout(d time.Duration) JobOption {
	return func(e *entry) {
		e.timeout = d
	}
}

// Scheduler runs each registered job on its own ticker goroutine.
// Runs of the same job never overlap; a failing run is logged and the
// job keeps its schedule.
type Scheduler struct {
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*entry
	order     []string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// New creates a scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Register adds job to run every interval. Registering a name twice replaces it.
func (s *Scheduler) Register(job Job, interval time.Duration, opts ...JobOption) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, job.Name())
	}
	e := &entry{
		job:      job,
		interval: interval,
		state:    JobState{Name: job.Name(), Interval: interval, Status: JobStatusPending},
	}
	for _, opt := range opts {
		opt(e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[job.Name()]; !exists {
		s.order = append(s.order, job.Name())
	}
	s.entries[job.Name()] = e
	return nil
}

// Start launches a goroutine per job. The jobs stop when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrAlreadyRunning
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, name := range s.order {
		e := s.entries[name]
		s.wg.Add(1)
		go s.loop(ctx, e)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.order)))
	return nil
}

// Stop cancels every job and waits for in-flight runs to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs the named job once on the calling goroutine
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, e)
}

// States returns a snapshot of every job in registration order
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobState, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name].state)
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	if e.runNow {
		_ = s.run(ctx, e)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.run(ctx, e)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) (err error) {
	started := s.now()
	s.mu.Lock()
	e.state.Status = JobStatusRunning
	e.state.LastStarted = &started
	s.mu.Unlock()

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		ended := s.now()
		s.mu.Lock()
		e.state.Runs++
		e.state.LastEnded = &ended
		if err != nil {
			e.state.Status = JobStatusFailed
			e.state.LastError = err.Error()
			e.state.Failures++
		} else {
			e.state.Status = JobStatusSuccess
			e.state.LastError = ""
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("Scheduled job failed", zap.String("job", e.job.Name()), zap.Error(err))
		} else {
			s.logger.Debug("Scheduled job finished",
				zap.String("job", e.job.Name()),
				zap.Duration("duration", ended.Sub(started)))
		}
	}()

	// jobs show up in profiles under operation=<job name>
	telemetry.WithProfilingLabels(runCtx, telemetry.OperationLabels(e.job.Name(), nil), func(ctx context.Context) {
		err = e.job.Run(ctx)
	})
	return err
}
