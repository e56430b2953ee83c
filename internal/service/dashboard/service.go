package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
	"github.com/mamadbah2/factoryboard/internal/ingest"
	"github.com/mamadbah2/factoryboard/internal/metrics"
	"github.com/mamadbah2/factoryboard/internal/repository/mongodb"
	"github.com/mamadbah2/factoryboard/internal/repository/sheets"
	"github.com/mamadbah2/factoryboard/internal/service/reporting"
	"github.com/mamadbah2/factoryboard/internal/store"
)

var (
	// ErrIngest wraps every failure that prevented a dataset replacement.
	ErrIngest = errors.New("ingest failed")
	// ErrFetch wraps every failure while reading the current dataset.
	ErrFetch = errors.New("fetch failed")
	// ErrStrictRejected indicates a strict upload carried rows that had to be dropped.
	ErrStrictRejected = errors.New("upload contains rejected rows")
	// ErrSheetNotConfigured indicates no sheet import source is wired.
	ErrSheetNotConfigured = errors.New("sheet import not configured")
)

const archiveTimeout = 5 * time.Second

// UploadOptions tunes how an upload is accepted.
type UploadOptions struct {
	// Strict rejects the whole upload when any row produced a warning.
	Strict bool
}

// UploadResult describes an ingestion attempt.
type UploadResult struct {
	ID       string                    `json:"id"`
	Filename string                    `json:"filename,omitempty"`
	Source   string                    `json:"source"`
	Version  uint64                    `json:"version"`
	Rows     int                       `json:"rows"`
	Counts   map[models.RecordKind]int `json:"counts"`
	Warnings []models.RowWarning       `json:"warnings"`
	Metrics  models.KeyMetrics         `json:"metrics"`
}

// Overview is every dashboard collection read from a single snapshot.
type Overview struct {
	Version     uint64                     `json:"version"`
	Source      string                     `json:"source"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
	Production  []models.ProductionRecord  `json:"production"`
	Defects     []models.DefectRecord      `json:"defects"`
	Quality     []models.QualityRecord     `json:"quality"`
	Maintenance []models.MaintenanceRecord `json:"maintenance"`
	Metrics     models.KeyMetrics          `json:"metrics"`
	History     []models.MetricsSnapshot   `json:"history,omitempty"`
}

// Deps groups the collaborators of Service.
type Deps struct {
	Store      *store.Store
	Parser     *ingest.Parser
	Reporting  *reporting.Service
	Archive    mongodb.Repository
	Sheets     sheets.Repository
	SheetRange string
	Recorder   *metrics.Recorder
	Logger     *zap.Logger
}

// Service is the dashboard's application layer.
type Service struct {
	store      *store.Store
	parser     *ingest.Parser
	reporting  *reporting.Service
	archive    mongodb.Repository
	sheets     sheets.Repository
	sheetRange string
	recorder   *metrics.Recorder
	logger     *zap.Logger
	newID      func() string
	now        func() time.Time
}

// NewService constructs the dashboard service.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := deps.Parser
	if parser == nil {
		parser = ingest.NewParser(logger.Named("ingest"))
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	return &Service{
		store:      deps.Store,
		parser:     parser,
		reporting:  deps.Reporting,
		archive:    deps.Archive,
		sheets:     deps.Sheets,
		sheetRange: deps.SheetRange,
		recorder:   recorder,
		logger:     logger,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Upload parses r and, on success, replaces the current dataset. A failed upload
// leaves the current dataset untouched.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader, opts UploadOptions) (*UploadResult, error) {
	timer := metrics.NewTimer()

	res, err := s.parser.Parse(ctx, r)
	if err != nil {
		s.recorder.RecordIngest(store.SourceUpload, "error", nil, nil, timer.Duration())
		s.logger.Warn("upload parse failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrIngest, err)
	}

	if opts.Strict && len(res.Warnings) > 0 {
		s.recorder.RecordIngest(store.SourceUpload, "rejected", nil, warningCounts(res.Warnings), timer.Duration())
		s.logger.Info("strict upload rejected",
			zap.String("filename", filename),
			zap.Int("warnings", len(res.Warnings)))
		return &UploadResult{
			Filename: filename,
			Source:   store.SourceUpload,
			Version:  s.store.Snapshot().Version,
			Rows:     res.Rows,
			Counts:   res.Dataset.Counts(),
			Warnings: res.Warnings,
		}, fmt.Errorf("%w: %w", ErrIngest, ErrStrictRejected)
	}

	result := s.install(ctx, res, store.SourceUpload, filename)
	s.recorder.RecordIngest(store.SourceUpload, "ok", kindCounts(res.Dataset), warningCounts(res.Warnings), timer.Duration())
	return result, nil
}

// SyncFromSheet imports the configured spreadsheet range through the same rules as
// an upload.
func (s *Service) SyncFromSheet(ctx context.Context) (*UploadResult, error) {
	if s.sheets == nil {
		return nil, ErrSheetNotConfigured
	}
	timer := metrics.NewTimer()

	rows, err := sheets.ReadRows(ctx, s.sheets, s.sheetRange)
	if err != nil {
		return nil, s.sheetFailure(timer, err)
	}
	res, err := s.parser.ParseRows(ctx, rows)
	if err != nil {
		return nil, s.sheetFailure(timer, err)
	}

	result := s.install(ctx, res, store.SourceSheet, s.sheetRange)
	s.recorder.RecordIngest(store.SourceSheet, "ok", kindCounts(res.Dataset), warningCounts(res.Warnings), timer.Duration())
	return result, nil
}

func (s *Service) sheetFailure(timer *metrics.Timer, err error) error {
	s.recorder.RecordIngest(store.SourceSheet, "error", nil, nil, timer.Duration())
	s.logger.Warn("sheet import failed", zap.String("range", s.sheetRange), zap.Error(err))
	return fmt.Errorf("%w: sheet %s: %w", ErrIngest, s.sheetRange, err)
}

func (s *Service) install(ctx context.Context, res *ingest.Result, source, filename string) *UploadResult {
	snap := s.store.Replace(res.Dataset, source)
	s.recorder.SetVersion(snap.Version)

	warnings := res.Warnings
	if warnings == nil {
		warnings = []models.RowWarning{}
	}

	result := &UploadResult{
		ID:       s.newID(),
		Filename: filename,
		Source:   source,
		Version:  snap.Version,
		Rows:     res.Rows,
		Counts:   snap.Dataset.Counts(),
		Warnings: warnings,
		Metrics:  snap.Dataset.KeyMetrics(),
	}

	s.logger.Info("dataset installed",
		zap.String("upload_id", result.ID),
		zap.String("source", source),
		zap.Uint64("version", snap.Version),
		zap.Int("rows", res.Rows),
		zap.Int("warnings", len(warnings)))

	s.archiveInstall(ctx, snap, result)
	return result
}

// archiveInstall is best effort: the dataset is already live when it runs.
func (s *Service) archiveInstall(ctx context.Context, snap *store.Snapshot, result *UploadResult) {
	if s.archive == nil {
		return
	}

	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	counts := make(map[string]int, len(result.Counts))
	for kind, n := range result.Counts {
		counts[string(kind)] = n
	}

	upload := models.UploadRecord{
		ID:        result.ID,
		Filename:  result.Filename,
		Version:   snap.Version,
		Counts:    counts,
		Warnings:  result.Warnings,
		Dataset:   snap.Dataset,
		CreatedAt: s.now().UTC(),
	}
	if err := s.archive.SaveUpload(archiveCtx, upload); err != nil {
		s.logger.Error("failed to archive upload", zap.String("upload_id", result.ID), zap.Error(err))
	}

	if s.reporting == nil {
		return
	}
	if err := s.archive.SaveSnapshot(archiveCtx, s.reporting.Snapshot(snap, reporting.TriggerReplace)); err != nil {
		s.logger.Error("failed to archive metrics snapshot", zap.Uint64("version", snap.Version), zap.Error(err))
	}
}

// Overview reads every collection and the key metrics from one snapshot. When
// historyLimit is positive the archived metric history is loaded alongside.
func (s *Service) Overview(ctx context.Context, historyLimit int) (*Overview, error) {
	snap := s.store.Snapshot()
	ds := snap.Dataset.Clone()

	out := &Overview{
		Version:     snap.Version,
		Source:      snap.Source,
		UpdatedAt:   snap.UpdatedAt,
		Production:  ds.Production,
		Defects:     ds.Defects,
		Quality:     ds.Quality,
		Maintenance: ds.Maintenance,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Metrics = ds.KeyMetrics()
		return gCtx.Err()
	})
	if historyLimit > 0 && s.reporting != nil {
		g.Go(func() error {
			history, err := s.reporting.History(gCtx, historyLimit)
			if err != nil {
				return err
			}
			out.History = history
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: overview: %w", ErrFetch, err)
	}
	return out, nil
}

// Production returns the current production collection.
func (s *Service) Production(ctx context.Context) ([]models.ProductionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: production: %w", ErrFetch, err)
	}
	return s.store.Production(), nil
}

// Defects returns the current defect collection.
func (s *Service) Defects(ctx context.Context) ([]models.DefectRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: defects: %w", ErrFetch, err)
	}
	return s.store.Defects(), nil
}

// Quality returns the current quality collection.
func (s *Service) Quality(ctx context.Context) ([]models.QualityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: quality: %w", ErrFetch, err)
	}
	return s.store.Quality(), nil
}

// Maintenance returns the current maintenance collection.
func (s *Service) Maintenance(ctx context.Context) ([]models.MaintenanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: maintenance: %w", ErrFetch, err)
	}
	return s.store.Maintenance(), nil
}

// KeyMetrics recomputes the aggregates over the current dataset.
func (s *Service) KeyMetrics(ctx context.Context) (models.KeyMetrics, error) {
	if err := ctx.Err(); err != nil {
		return models.KeyMetrics{}, fmt.Errorf("%w: key metrics: %w", ErrFetch, err)
	}
	return s.store.KeyMetrics(), nil
}

// History returns archived metric snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.MetricsSnapshot, error) {
	if s.reporting == nil {
		return []models.MetricsSnapshot{}, nil
	}
	history, err := s.reporting.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return history, nil
}

// Template returns the static CSV template.
func (s *Service) Template() string {
	return ingest.Template()
}

func kindCounts(ds *models.Dataset) map[string]int {
	counts := make(map[string]int, 4)
	for kind, n := range ds.Counts() {
		counts[string(kind)] = n
	}
	return counts
}

func warningCounts(warnings []models.RowWarning) map[string]int {
	counts := make(map[string]int)
	for _, w := range warnings {
		counts[w.Reason]++
	}
	return counts
}
