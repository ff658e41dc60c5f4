package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/trogers1052/eod-connector/internal/connector"
)

// Job is one sync pass
type Job interface {
	Run(ctx context.Context) (*connector.RunSummary, error)
}

// Scheduler runs sync passes on a cron schedule. Scheduled and manual passes
// share one guard: a pass requested while another is running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	pass    cron.Job
	job     Job
	ctx     context.Context
	logger  zerolog.Logger
	running sync.WaitGroup
}

// New creates a scheduler whose passes run under ctx
func New(ctx context.Context, job Job, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cronLogger := cronLogAdapter{logger: logger}

	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger)),
		job:    job,
		ctx:    ctx,
		logger: logger,
	}
	s.pass = cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)).
		Then(cron.FuncJob(s.runPass))
	return s
}

// Register schedules the sync pass with a six-field cron expression
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddJob(spec, s.pass); err != nil {
		return fmt.Errorf("register sync task: %w", err)
	}
	s.logger.Info().Str("cron", spec).Msg("sync task registered")
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for scheduled and triggered passes to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.running.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes one pass in the caller's goroutine unless a pass is
// already running, in which case it returns immediately.
func (s *Scheduler) RunNow() {
	s.running.Add(1)
	defer s.running.Done()
	s.pass.Run()
}

// Trigger starts RunNow in the background. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.pass.Run()
	}()
}

// runPass executes the job and logs the outcome. A failed pass does not
// stop later ones.
func (s *Scheduler) runPass() {
	summary, err := s.job.Run(s.ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled sync failed")
		return
	}
	s.logger.Info().
		Int("synced", summary.Synced()).
		Int("skipped", summary.Skipped()).
		Int("rows_written", summary.RowsWritten()).
		Msg("scheduled sync finished")
}

// cronLogAdapter routes cron's internal logging through zerolog
type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
