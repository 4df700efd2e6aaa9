// Package scheduler runs named recurring jobs, each on its own ticker.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrDuplicateJob is returned when a job name is already scheduled.
var ErrDuplicateJob = errors.New("job already scheduled")

// Job is one recurring unit of work. A returned error is logged and the
// schedule keeps going; the next tick fires regardless.
type Job func(ctx context.Context) error

// A job holds two cancel handles: stopLoop ends the tick loop without
// touching the context a run executes under, cancelRun aborts the run
// itself. Stop uses only the former; Close uses both.
type job struct {
	stopLoop  context.CancelFunc
	cancelRun context.CancelFunc
	done      chan struct{}
}

// Scheduler owns a set of named recurring jobs with an explicit lifecycle.
// Construct with New; the zero value is not usable.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	closed bool
}

// New returns a Scheduler with no jobs registered.
func New() *Scheduler {
	return &Scheduler{jobs: make(map[string]*job)}
}

// ScheduleRecurring registers fn to run every interval under name. A name
// can only be active once; re-registering before Stop fails with
// ErrDuplicateJob. Runs execute one at a time on the job's own goroutine,
// so ticks that fire while a run is still in progress are dropped, not
// queued.
func (s *Scheduler) ScheduleRecurring(name string, interval time.Duration, fn Job) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("scheduler is closed")
	}
	if _, active := s.jobs[name]; active {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, name)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	runCtx, cancelRun := context.WithCancel(context.Background())
	j := &job{stopLoop: stopLoop, cancelRun: cancelRun, done: make(chan struct{})}
	s.jobs[name] = j

	go s.run(loopCtx, runCtx, cancelRun, name, interval, fn, j.done)
	return nil
}

// Stop cancels future runs of name. An in-flight run finishes on its own
// with its context intact; Stop does not wait for it. Unknown names are a
// no-op.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	j, active := s.jobs[name]
	if active {
		delete(s.jobs, name)
	}
	s.mu.Unlock()

	if active {
		j.stopLoop()
	}
}

// Close stops every job, cancels in-flight runs and waits for them to
// finish. The scheduler cannot be reused afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	jobs := s.jobs
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	for _, j := range jobs {
		j.stopLoop()
		j.cancelRun()
	}
	for _, j := range jobs {
		<-j.done
	}
}

func (s *Scheduler) run(loopCtx, runCtx context.Context, cancelRun context.CancelFunc, name string, interval time.Duration, fn Job, done chan struct{}) {
	defer close(done)
	// Runs execute synchronously inside this loop, so by the time the loop
	// exits none is in flight and runCtx can be released.
	defer cancelRun()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			invoke(runCtx, name, fn)
		}
	}
}

// invoke runs fn, containing errors and panics so one bad tick cannot take
// the schedule down.
func invoke(ctx context.Context, name string, fn Job) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("scheduler: job %q panicked: %v", name, rec)
		}
	}()
	if err := fn(ctx); err != nil {
		log.Printf("scheduler: job %q failed: %v", name, err)
	}
}
