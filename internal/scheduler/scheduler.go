package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/config"
	"github.com/mamadbah2/factoryboard/internal/domain/models"
	"github.com/mamadbah2/factoryboard/internal/service/dashboard"
	"github.com/mamadbah2/factoryboard/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// SnapshotRecorder archives the metrics of the current dataset.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, trigger string) (models.MetricsSnapshot, error)
}

// SheetSyncer re-imports the dataset from the configured spreadsheet.
type SheetSyncer interface {
	SyncFromSheet(ctx context.Context) (*dashboard.UploadResult, error)
}

// DigestSender pushes the current metrics digest.
type DigestSender interface {
	SendDigest(ctx context.Context, req models.DigestRequest) error
}

// Jobs groups the optional job targets. A nil target disables its job.
type Jobs struct {
	Snapshots SnapshotRecorder
	Sheets    SheetSyncer
	Digest    DigestSender
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	cfg    config.ScheduleConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ScheduleConfig, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
		}
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Register adds every configured job to the cron table.
func (s *Scheduler) Register() error {
	entries := []struct {
		name string
		expr string
		run  func()
		on   bool
	}{
		{"metrics snapshot", s.cfg.SnapshotCron, s.recordSnapshot, s.jobs.Snapshots != nil},
		{"sheet sync", s.cfg.SheetSyncCron, s.syncSheet, s.jobs.Sheets != nil},
		{"metrics digest", s.cfg.DigestCron, s.sendDigest, s.jobs.Digest != nil},
	}

	for _, e := range entries {
		if e.expr == "" || !e.on {
			continue
		}
		if _, err := s.cron.AddFunc(e.expr, e.run); err != nil {
			return fmt.Errorf("schedule %s (%s): %w", e.name, e.expr, err)
		}
		s.logger.Info("job scheduled", zap.String("job", e.name), zap.String("cron", e.expr))
	}
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) recordSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snapshot, err := s.jobs.Snapshots.RecordSnapshot(ctx, reporting.TriggerScheduled)
	if err != nil {
		s.logger.Error("failed to record metrics snapshot", zap.Error(err))
		return
	}
	s.logger.Info("metrics snapshot recorded", zap.Uint64("version", snapshot.Version))
}

func (s *Scheduler) syncSheet() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.jobs.Sheets.SyncFromSheet(ctx)
	if err != nil {
		s.logger.Error("failed to sync dataset from sheet", zap.Error(err))
		return
	}
	s.logger.Info("dataset synced from sheet",
		zap.Uint64("version", result.Version),
		zap.Int("warnings", len(result.Warnings)))
}

func (s *Scheduler) sendDigest() {
	s.logger.Info("sending metrics digest")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.jobs.Digest.SendDigest(ctx, models.DigestRequest{}); err != nil {
		s.logger.Error("failed to send metrics digest", zap.Error(err))
	} else {
		s.logger.Info("metrics digest sent successfully")
	}
}
