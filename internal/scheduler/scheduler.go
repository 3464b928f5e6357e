package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/config"
	"github.com/woodtrack/sawmill/internal/service/reporting"
	"github.com/woodtrack/sawmill/pkg/clients/notify"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	notifier     notify.Client
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil, in
// which case reports are only archived.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []cron.Option
	if cfg.Reporting.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Reporting.Timezone); err == nil {
			opts = append(opts, cron.WithLocation(loc))
		} else {
			logger.Warn("invalid timezone, scheduler falls back to local time",
				zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
		}
	}

	return &Scheduler{
		cron:         cron.New(opts...),
		reportingSvc: reportingSvc,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the daily report job and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendDailyReport)
	if err != nil {
		s.logger.Error("failed to schedule daily report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, summary, err := s.reportingSvc.GenerateDailyReport(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to generate daily report", zap.Error(err))
		return
	}
	s.logger.Info("daily report archived", zap.String("report_id", report.ID))

	if s.notifier == nil {
		return
	}

	title := "Warehouse report " + report.Date.Format("2006-01-02")
	if err := s.notifier.Push(ctx, title, summary); err != nil {
		s.logger.Error("failed to push daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report notification sent")
	}
}
