package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
	"github.com/mamadbah2/factoryboard/internal/repository/mongodb"
	"github.com/mamadbah2/factoryboard/internal/store"
)

const timestampLayout = "2006-01-02 15:04 MST"

// Triggers recorded on archived snapshots.
const (
	TriggerScheduled = "scheduled"
	TriggerReplace   = "replace"
)

// Service exposes lightweight analytics over the current dataset.
type Service struct {
	store   *store.Store
	archive mongodb.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(st *store.Store, archive mongodb.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, archive: archive, logger: logger, now: time.Now}
}

// Snapshot builds the archived view of the given store snapshot.
func (s *Service) Snapshot(snap *store.Snapshot, trigger string) models.MetricsSnapshot {
	records := 0
	for _, n := range snap.Dataset.Counts() {
		records += n
	}
	return models.MetricsSnapshot{
		Version:   snap.Version,
		Source:    snap.Source,
		Trigger:   trigger,
		Metrics:   snap.Dataset.KeyMetrics(),
		Records:   records,
		DataAsOf:  snap.UpdatedAt,
		CreatedAt: s.now().UTC(),
	}
}

// RecordSnapshot archives the metrics of the current dataset.
func (s *Service) RecordSnapshot(ctx context.Context, trigger string) (models.MetricsSnapshot, error) {
	snapshot := s.Snapshot(s.store.Snapshot(), trigger)
	if err := s.archive.SaveSnapshot(ctx, snapshot); err != nil {
		return snapshot, fmt.Errorf("archive metrics snapshot: %w", err)
	}

	s.logger.Debug("metrics snapshot archived",
		zap.Uint64("version", snapshot.Version),
		zap.String("trigger", trigger))
	return snapshot, nil
}

// History returns the most recent archived snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.MetricsSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	snapshots, err := s.archive.RecentSnapshots(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load metrics history: %w", err)
	}
	return snapshots, nil
}

// Summary renders a short plain-text digest of the current metrics.
func (s *Service) Summary(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	snap := s.store.Snapshot()
	ds := snap.Dataset
	m := ds.KeyMetrics()

	var b strings.Builder
	fmt.Fprintf(&b, "Factory metrics (dataset v%d from %s, %s)\n", snap.Version, snap.Source, snap.UpdatedAt.Format(timestampLayout))

	if len(ds.Production) == 0 {
		b.WriteString("Production: no records yet.\n")
	} else {
		fmt.Fprintf(&b, "Production: %d units across %d periods. Avg efficiency %.1f%%, avg energy %.1f%%.\n",
			m.TotalProduction, len(ds.Production), m.AverageEfficiency, m.AverageEnergy)
	}

	if top, ok := topDefect(ds.Defects); ok {
		fmt.Fprintf(&b, "Defects: %d total, most in %s (%d).\n", m.TotalDefects, top.Category, top.Count)
	} else {
		b.WriteString("Defects: none logged.\n")
	}

	preventive, corrective := maintenanceTotals(ds.Maintenance)
	fmt.Fprintf(&b, "Maintenance: %d preventive, %d corrective.", preventive, corrective)

	return b.String(), nil
}

func topDefect(defects []models.DefectRecord) (models.DefectRecord, bool) {
	var top models.DefectRecord
	found := false
	for _, d := range defects {
		if !found || d.Count > top.Count {
			top = d
			found = true
		}
	}
	return top, found
}

func maintenanceTotals(records []models.MaintenanceRecord) (preventive, corrective int) {
	for _, r := range records {
		preventive += r.Preventive
		corrective += r.Corrective
	}
	return preventive, corrective
}
