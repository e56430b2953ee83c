package store

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

// Sources recorded on a snapshot.
const (
	SourceSample = "sample"
	SourceEmpty  = "empty"
	SourceUpload = "upload"
	SourceSheet  = "sheet"
)

// Snapshot is one immutable view of the held dataset. Callers must not modify the
// dataset it points to.
type Snapshot struct {
	Dataset   *models.Dataset
	Version   uint64
	Source    string
	UpdatedAt time.Time
}

// Store holds the current dataset. Replacement swaps the whole snapshot at once so
// readers see either the old or the new dataset, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a store seeded with initial. A nil initial dataset yields empty collections.
func New(initial *models.Dataset, source string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial == nil {
		initial = models.NewDataset()
		source = SourceEmpty
	}

	s := &Store{logger: logger, now: time.Now}
	s.current.Store(&Snapshot{
		Dataset:   initial.Clone(),
		Version:   1,
		Source:    source,
		UpdatedAt: s.now().UTC(),
	})
	return s
}

// Replace installs dataset as the current one and returns the new snapshot. The
// dataset is copied so later changes by the caller are not visible to readers.
func (s *Store) Replace(dataset *models.Dataset, source string) *Snapshot {
	next := &Snapshot{
		Dataset:   dataset.Clone(),
		Source:    source,
		UpdatedAt: s.now().UTC(),
	}

	for {
		prev := s.current.Load()
		next.Version = prev.Version + 1
		if s.current.CompareAndSwap(prev, next) {
			s.logger.Info("dataset replaced",
				zap.Uint64("version", next.Version),
				zap.String("source", source),
				zap.Any("counts", next.Dataset.Counts()))
			return next
		}
	}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Production returns a copy of the current production collection.
func (s *Store) Production() []models.ProductionRecord {
	return append([]models.ProductionRecord{}, s.Snapshot().Dataset.Production...)
}

// Defects returns a copy of the current defect collection.
func (s *Store) Defects() []models.DefectRecord {
	return append([]models.DefectRecord{}, s.Snapshot().Dataset.Defects...)
}

// Quality returns a copy of the current quality collection.
func (s *Store) Quality() []models.QualityRecord {
	return append([]models.QualityRecord{}, s.Snapshot().Dataset.Quality...)
}

// Maintenance returns a copy of the current maintenance collection.
func (s *Store) Maintenance() []models.MaintenanceRecord {
	return append([]models.MaintenanceRecord{}, s.Snapshot().Dataset.Maintenance...)
}

// KeyMetrics recomputes the aggregates over the current dataset.
func (s *Store) KeyMetrics() models.KeyMetrics {
	return s.Snapshot().Dataset.KeyMetrics()
}
