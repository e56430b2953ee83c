package mongodb

import (
	"context"
	"sync"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

// MaxMemoryUploads bounds the upload traces kept in process memory.
const MaxMemoryUploads = 20

// MemoryRepository keeps a bounded archive in process memory. It is used when no
// MongoDB URI is configured. Upload traces are kept without their dataset.
type MemoryRepository struct {
	mu             sync.RWMutex
	capacity       int
	uploadCapacity int
	snapshots      []models.MetricsSnapshot
	uploads        []models.UploadRecord
}

// NewMemoryRepository builds an archive that retains at most capacity snapshots and
// at most min(capacity, MaxMemoryUploads) upload traces.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryRepository{capacity: capacity, uploadCapacity: min(capacity, MaxMemoryUploads)}
}

func (r *MemoryRepository) SaveSnapshot(_ context.Context, snapshot models.MetricsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	if over := len(r.snapshots) - r.capacity; over > 0 {
		r.snapshots = append([]models.MetricsSnapshot{}, r.snapshots[over:]...)
	}
	return nil
}

func (r *MemoryRepository) SaveUpload(_ context.Context, upload models.UploadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload.Dataset = nil
	r.uploads = append(r.uploads, upload)
	if over := len(r.uploads) - r.uploadCapacity; over > 0 {
		r.uploads = append([]models.UploadRecord{}, r.uploads[over:]...)
	}
	return nil
}

func (r *MemoryRepository) RecentSnapshots(_ context.Context, limit int) ([]models.MetricsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.MetricsSnapshot{}
	for i := len(r.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.snapshots[i])
	}
	return out, nil
}

// Uploads returns a copy of the retained upload records, oldest first.
func (r *MemoryRepository) Uploads() []models.UploadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.UploadRecord{}, r.uploads...)
}
