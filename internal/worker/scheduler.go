package worker

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/usecase"
	"github.com/sirupsen/logrus"
)

// Cycle is the cleanup work the scheduler drives.
type Cycle interface {
	RunAll(ctx context.Context, now time.Time) usecase.Report
	AnnualBackup(ctx context.Context, now time.Time) (bool, error)
}

type Scheduler struct {
	cycle     Cycle
	interval  time.Duration
	dailyHour int
	log       *logrus.Logger
	now       func() time.Time

	lastDaily string
}

func NewScheduler(cycle Cycle, interval time.Duration, dailyHour int, log *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		cycle:     cycle,
		interval:  interval,
		dailyHour: dailyHour,
		log:       log,
		now:       time.Now,
	}
}

// Run checks on start and then every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.WithFields(logrus.Fields{
		"interval":   s.interval.String(),
		"daily_hour": s.dailyHour,
	}).Info("scheduler: started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler: stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs the daily cycle once per day at the configured hour and checks
// the annual backup on every call. It never panics.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	today := now.Format("2006-01-02")

	if now.Hour() == s.dailyHour && s.lastDaily != today {
		s.lastDaily = today
		s.safely("daily cleanup", func() {
			s.cycle.RunAll(ctx, now.UTC())
		})
	}

	s.safely("annual backup", func() {
		if _, err := s.cycle.AnnualBackup(ctx, now); err != nil {
			s.log.WithError(err).Error("scheduler: annual backup failed")
		}
	})
}

// RunOnce runs one full cycle immediately, for the --once flag.
func (s *Scheduler) RunOnce(ctx context.Context) usecase.Report {
	now := s.now()
	var report usecase.Report
	s.safely("cleanup", func() {
		report = s.cycle.RunAll(ctx, now.UTC())
	})
	s.safely("annual backup", func() {
		if _, err := s.cycle.AnnualBackup(ctx, now); err != nil {
			s.log.WithError(err).Error("scheduler: annual backup failed")
		}
	})
	return report
}

func (s *Scheduler) safely(name string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			s.log.WithField("job", name).Errorf("scheduler: job panicked: %v", p)
		}
	}()
	fn()
}
