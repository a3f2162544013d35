/*
Package jobs runs the periodic maintenance of TrailMeet on a robfig/cron scheduler.
*/
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/metrics"
)

// sweepTimeout bounds a single run of a job.
const sweepTimeout = 30 * time.Second

// EventCompleter marks active events that started before a cutoff as completed.
type EventCompleter interface {
	CompletePastEvents(ctx context.Context, eventDate pgtype.Timestamptz) (int64, error)
}

// Scheduler owns the cron instance and its registered jobs.
type Scheduler struct {
	cron   *cron.Cron
	now    func() time.Time
	logger zerolog.Logger
}

func NewScheduler() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		now:    time.Now,
		logger: logx.Component("Jobs"),
	}
}

// AddEventSweep schedules SweepPastEvents on a standard 5-field cron spec.
func (s *Scheduler) AddEventSweep(spec string, store EventCompleter) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		n, err := SweepPastEvents(ctx, store, s.now())
		if err != nil {
			s.logger.Error().Err(err).Msg("Event sweep failed")
			return
		}
		if n > 0 {
			s.logger.Info().Int64("completed", n).Msg("Completed past events")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule event sweep %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started.")
}

// Stop stops scheduling and waits for running jobs, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("Scheduler stopped.")
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stop timed out with jobs still running.")
	}
}

// SweepPastEvents completes every active event whose start time is before now.
func SweepPastEvents(ctx context.Context, store EventCompleter, now time.Time) (int64, error) {
	n, err := store.CompletePastEvents(ctx, pgtype.Timestamptz{Time: now, Valid: true})
	if err != nil {
		return 0, err
	}
	metrics.TrackEventsCompleted(n)
	return n, nil
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logx.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logx.Error(err, "cron: "+msg, keysAndValues...)
}
