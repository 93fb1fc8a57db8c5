// Package scheduler runs the collection jobs on a fixed daily
// timetable. Each job is single-flight: a per-process mutex plus an
// optional distributed lock keep two instances from running the same
// job at once.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/pkg/distlock"
	"github.com/diretoriaja/monitor/internal/pkg/logger"
)

// Sentinel errors RunNow returns so the API can tell a missing job
// from a busy one.
var (
	ErrUnknownJob     = errors.New("unknown job")
	ErrAlreadyRunning = errors.New("job already running")
)

// Result is what a job reports when it finishes.
type Result struct {
	Status  domain.JobStatus
	Count   int
	Message string
}

// JobFunc is the body of a job. It must honor ctx cancellation.
type JobFunc func(ctx context.Context) Result

// Schedule fires daily at Hour:Minute in the scheduler's timezone, or
// weekly when Weekday is set.
type Schedule struct {
	Hour    int
	Minute  int
	Weekday *time.Weekday
}

// Next returns the first firing time strictly after from.
func (s Schedule) Next(from time.Time, loc *time.Location) time.Time {
	from = from.In(loc)
	next := time.Date(from.Year(), from.Month(), from.Day(), s.Hour, s.Minute, 0, 0, loc)
	for !next.After(from) || (s.Weekday != nil && next.Weekday() != *s.Weekday) {
		next = next.AddDate(0, 0, 1)
		next = time.Date(next.Year(), next.Month(), next.Day(), s.Hour, s.Minute, 0, 0, loc)
	}
	return next
}

// JobLogger records job runs. *postgres.Store satisfies this.
type JobLogger interface {
	LogJobStart(ctx context.Context, kind string) (string, error)
	LogJobEnd(ctx context.Context, id string, status domain.JobStatus, message string, count int) error
}

// Job is one registered scheduled task.
type Job struct {
	ID       string
	Name     string
	Schedule Schedule
	Fn       JobFunc
	Lock     distlock.DistLock

	mu     sync.Mutex
	nextAt time.Time
}

// tryStart claims the per-process single-flight slot.
func (j *Job) tryStart() bool { return j.mu.TryLock() }

func (j *Job) finish() { j.mu.Unlock() }

// Info is the read-only view of a job exposed by ListJobs.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NextRunAt time.Time `json:"next_run_at"`
}

// Scheduler owns the job registry and the firing loop.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []*Job
	byID     map[string]*Job
	logs     JobLogger
	loc      *time.Location
	interval time.Duration
	drain    time.Duration
	renew    time.Duration
	wg       sync.WaitGroup
	now      func() time.Time
}

// New builds a scheduler in the given timezone. A nil location defaults
// to America/Sao_Paulo, falling back to UTC if tzdata is unavailable.
func New(logs JobLogger, loc *time.Location) *Scheduler {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			loc = time.UTC
		}
	}
	return &Scheduler{
		byID:     make(map[string]*Job),
		logs:     logs,
		loc:      loc,
		interval: 30 * time.Second,
		drain:    2 * time.Minute,
		renew:    10 * time.Minute,
		now:      time.Now,
	}
}

// Register adds a job to the registry. Duplicate ids are rejected.
func (s *Scheduler) Register(job *Job) error {
	if job.ID == "" || job.Fn == nil {
		return fmt.Errorf("job needs an id and a function")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[job.ID]; ok {
		return fmt.Errorf("job %q already registered", job.ID)
	}
	job.nextAt = job.Schedule.Next(s.now(), s.loc)
	s.jobs = append(s.jobs, job)
	s.byID[job.ID] = job
	return nil
}

// ListJobs returns the registry sorted by next firing time.
func (s *Scheduler) ListJobs() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, Info{ID: j.ID, Name: j.Name, NextRunAt: j.nextAt})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].NextRunAt.Before(out[k].NextRunAt) })
	return out
}

// RunNow triggers a job outside its schedule and returns the log id
// without waiting for completion.
func (s *Scheduler) RunNow(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	job, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownJob, id)
	}
	if !job.tryStart() {
		return "", fmt.Errorf("%w: %q", ErrAlreadyRunning, id)
	}

	logID, err := s.logs.LogJobStart(ctx, job.ID)
	if err != nil {
		job.finish()
		return "", err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer job.finish()
		s.execute(context.WithoutCancel(ctx), job, logID)
	}()
	return logID, nil
}

// Run fires due jobs until ctx ends, then drains in-flight jobs with a
// deadline.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("[Scheduler] starting with %d jobs in %s", len(s.jobs), s.loc)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

func (s *Scheduler) fireDue(ctx context.Context) {
	now := s.now().In(s.loc)

	s.mu.Lock()
	var due []*Job
	for _, j := range s.jobs {
		if !now.Before(j.nextAt) {
			due = append(due, j)
			j.nextAt = j.Schedule.Next(now, s.loc)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		if !job.tryStart() {
			logger.Warn("job still running, skipping firing", "job", job.ID)
			continue
		}

		s.wg.Add(1)
		go func(job *Job) {
			defer s.wg.Done()
			defer job.finish()

			logID, err := s.logs.LogJobStart(ctx, job.ID)
			if err != nil {
				log.Printf("[Scheduler] opening log for %s: %v", job.ID, err)
				return
			}
			s.execute(ctx, job, logID)
		}(job)
	}
}

// execute runs the job body under the optional distributed lock and
// closes its log row.
func (s *Scheduler) execute(ctx context.Context, job *Job, logID string) {
	if job.Lock != nil {
		ok, err := job.Lock.Acquire(ctx)
		if err != nil {
			log.Printf("[Scheduler] lock for %s: %v", job.ID, err)
		}
		if !ok {
			logger.Warn("job held by another instance, skipping", "job", job.ID)
			s.closeLog(ctx, logID, Result{Status: domain.JobSkipped, Message: "held by another instance"})
			return
		}
		defer func() {
			if err := job.Lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Printf("[Scheduler] releasing lock for %s: %v", job.ID, err)
			}
		}()

		if ext, ok := job.Lock.(distlock.Extender); ok {
			stop := make(chan struct{})
			defer close(stop)
			go s.renewLock(ctx, job.ID, ext, stop)
		}
	}

	start := s.now()
	logger.Info("job started", "job", job.ID, "log_id", logID)

	result := s.run(ctx, job)
	logger.Info("job finished",
		"job", job.ID,
		"status", string(result.Status),
		"records", result.Count,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)
	s.closeLog(ctx, logID, result)
}

// renewLock keeps the distributed lock alive while the job body runs.
// A failed renewal means the lock expired or changed hands; the run
// finishes but stops pretending it is exclusive.
func (s *Scheduler) renewLock(ctx context.Context, id string, lock distlock.Extender, stop <-chan struct{}) {
	ticker := time.NewTicker(s.renew)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := lock.Extend(ctx); err != nil {
				log.Printf("[Scheduler] renewing lock for %s: %v", id, err)
				return
			}
		}
	}
}

// run invokes the job body, converting a panic into an error result so
// one bad job never takes the scheduler down.
func (s *Scheduler) run(ctx context.Context, job *Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] %s panicked: %v", job.ID, r)
			result = Result{Status: domain.JobError, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return job.Fn(ctx)
}

func (s *Scheduler) closeLog(ctx context.Context, logID string, result Result) {
	if result.Status == "" {
		result.Status = domain.JobSuccess
	}
	err := s.logs.LogJobEnd(context.WithoutCancel(ctx), logID, result.Status, result.Message, result.Count)
	if err != nil {
		log.Printf("[Scheduler] closing log %s: %v", logID, err)
	}
}

// Drain blocks until in-flight jobs finish or the drain deadline
// passes. Used by one-shot runs.
func (s *Scheduler) Drain() error { return s.shutdown() }

// shutdown waits for in-flight jobs up to the drain deadline.
func (s *Scheduler) shutdown() error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Printf("[Scheduler] drained cleanly")
		return nil
	case <-time.After(s.drain):
		return fmt.Errorf("shutdown: jobs still running after %s", s.drain)
	}
}
