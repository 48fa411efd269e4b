// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/metrics"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron    *cron.Cron
	metrics *metrics.Recorder
	events  EventEmitter
	log     zerolog.Logger
}

// New creates a new scheduler. recorder and emitter may be nil.
func New(recorder *metrics.Recorder, emitter EventEmitter, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		metrics: recorder,
		events:  emitter,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a six-field cron schedule. An empty schedule leaves
// the job disabled.
// Schedule examples:
//   - "0 0 1 * * *"   - Every day at 01:00
//   - "@every 30s"    - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if schedule == "" {
		s.log.Info().Str("job", job.Name()).Msg("Job disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { _ = s.execute(job) }); err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.execute(job)
}

func (s *Scheduler) execute(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	s.emit(&events.JobStatusData{JobName: job.Name(), Status: "started", Timestamp: time.Now()})

	started := time.Now()
	err := job.Run()
	took := time.Since(started)
	s.metrics.JobRun(job.Name(), err)

	status := &events.JobStatusData{
		JobName:   job.Name(),
		Status:    "completed",
		Duration:  took.Seconds(),
		Timestamp: time.Now(),
	}
	if err != nil {
		status.Status = "failed"
		status.Error = err.Error()
		s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
	} else {
		s.log.Debug().Str("job", job.Name()).Dur("duration_ms", took).Msg("Job completed")
	}
	s.emit(status)

	return err
}

func (s *Scheduler) emit(data events.EventData) {
	if s.events != nil {
		s.events.Emit("scheduler", data)
	}
}
