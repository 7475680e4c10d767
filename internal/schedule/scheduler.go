package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is a scheduled callback. Errors are contained at the scheduler
// boundary; a failing run never cancels future firings.
type Job func(ctx context.Context) error

type job struct {
	name  string
	first time.Time
	every time.Duration
	run   Job
}

// Scheduler fires registered jobs at a fixed rate: each job's fire times
// are first + n*every regardless of how long a run takes. A run that
// overruns its interval delays the next firing but never doubles it, and
// runs of the same job never overlap. Jobs are independent of each other.
//
// The schedule lives only in process memory; on restart the first fire is
// recomputed from wall-clock, which is safe because ingestion downstream
// is idempotent.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add registers a job with its first fire time and repeat interval.
// Must be called before Start.
func (s *Scheduler) Add(name string, first time.Time, every time.Duration, run Job) error {
	if every <= 0 {
		return fmt.Errorf("job %s: repeat interval must be positive, got %s", name, every)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("job %s: scheduler already started", name)
	}
	s.jobs = append(s.jobs, job{name: name, first: first, every: every, run: run})
	return nil
}

// Start launches one runner goroutine per registered job. The runners
// stop when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	// The derived context only gates the firing loop. Callbacks run on the
	// parent context so that Stop halts future firings without yanking an
	// in-flight run's Slack or database calls.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runner(runCtx, ctx, j)
	}
}

// Stop cancels future firings and waits for the runner goroutines to
// exit. An in-flight job run is not interrupted; Stop returns after it
// completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// runner executes one job on its fixed-rate timeline. A single loop both
// waits and runs, which is what guarantees at-most-one in-flight
// execution: the timer for fire n+1 is not consulted until run n has
// returned. When a run overruns, the next wait duration comes out
// negative and the timer fires immediately, so late cycles are made up
// without ever being skipped.
func (s *Scheduler) runner(ctx context.Context, jobCtx context.Context, j job) {
	defer s.wg.Done()

	log.Info().
		Str("job", j.name).
		Time("first_fire", j.first).
		Dur("every", j.every).
		Msg("Job scheduled")

	next := j.first
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", j.name).Msg("Job runner stopped")
			return
		case <-timer.C:
			s.execute(jobCtx, j)
			next = next.Add(j.every)
			timer.Reset(time.Until(next))
		}
	}
}

// execute runs a single job cycle, containing errors and panics so that
// neither this job's future firings nor the other job are affected.
func (s *Scheduler) execute(ctx context.Context, j job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("job", j.name).
				Interface("panic", r).
				Dur("dur", time.Since(start)).
				Msg("Job panicked")
		}
	}()

	if err := j.run(ctx); err != nil {
		log.Error().
			Str("job", j.name).
			Err(err).
			Dur("dur", time.Since(start)).
			Msg("Job run failed")
		return
	}
	log.Info().
		Str("job", j.name).
		Dur("dur", time.Since(start)).
		Msg("Job run completed")
}
