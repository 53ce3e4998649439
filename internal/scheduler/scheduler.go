package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/config"
	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/service/herd"
	"github.com/mamadbah2/herdsman/internal/service/notify"
)

// Scheduler manages scheduled tasks: the KPI snapshot refresh for the
// current month and the daily alert digest.
type Scheduler struct {
	cron     *cron.Cron
	herdSvc  *herd.Service
	notifier notify.Notifier
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil when
// digest delivery is not configured.
func NewScheduler(cfg config.Config, herdSvc *herd.Service, notifier notify.Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Scheduler.Timezone))
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		herdSvc:  herdSvc,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.SnapshotCronSchedule, s.refreshSnapshot); err != nil {
		s.logger.Error("failed to schedule kpi snapshot refresh", zap.Error(err))
	}

	if s.notifier != nil {
		if _, err := s.cron.AddFunc(s.cfg.Scheduler.DigestCronSchedule, s.sendAlertDigest); err != nil {
			s.logger.Error("failed to schedule alert digest", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	period := models.MonthPeriod(time.Now())
	s.logger.Info("refreshing kpi snapshot", zap.String("month", period.Month()))

	if _, err := s.herdSvc.MonthlySnapshot(ctx, period); err != nil {
		s.logger.Error("failed to refresh kpi snapshot", zap.Error(err))
	}
}

func (s *Scheduler) sendAlertDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	alerts, err := s.herdSvc.Alerts(ctx)
	if err != nil {
		s.logger.Error("failed to derive alerts for digest", zap.Error(err))
		return
	}

	if err := s.notifier.SendAlertDigest(ctx, alerts); err != nil {
		s.logger.Error("failed to send alert digest", zap.Error(err))
	}
}
