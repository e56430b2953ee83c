package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
	"github.com/mamadbah2/factoryboard/internal/ingest"
	"github.com/mamadbah2/factoryboard/internal/metrics"
	"github.com/mamadbah2/factoryboard/internal/service/dashboard"
	notify "github.com/mamadbah2/factoryboard/internal/service/whatsapp"
)

// Messages shown to dashboard users. Root causes are only logged.
const (
	UploadErrorMessage = "Error uploading file. Please check the format and try again."
	FetchErrorMessage  = "Failed to fetch data. Please try again."
)

const (
	uploadField         = "file"
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// DashboardService describes the operations the HTTP layer can perform.
type DashboardService interface {
	Upload(ctx context.Context, filename string, r io.Reader, opts dashboard.UploadOptions) (*dashboard.UploadResult, error)
	SyncFromSheet(ctx context.Context) (*dashboard.UploadResult, error)
	Overview(ctx context.Context, historyLimit int) (*dashboard.Overview, error)
	Production(ctx context.Context) ([]models.ProductionRecord, error)
	Defects(ctx context.Context) ([]models.DefectRecord, error)
	Quality(ctx context.Context) ([]models.QualityRecord, error)
	Maintenance(ctx context.Context) ([]models.MaintenanceRecord, error)
	KeyMetrics(ctx context.Context) (models.KeyMetrics, error)
	History(ctx context.Context, limit int) ([]models.MetricsSnapshot, error)
	Template() string
}

// DigestSender pushes metric digests on demand.
type DigestSender interface {
	SendDigest(ctx context.Context, req models.DigestRequest) error
}

// DashboardHandler adapts the dashboard service to HTTP.
type DashboardHandler struct {
	svc            DashboardService
	digest         DigestSender
	recorder       *metrics.Recorder
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter. digest may be nil.
func NewDashboardHandler(svc DashboardService, digest DigestSender, recorder *metrics.Recorder, maxUploadBytes int64, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	return &DashboardHandler{
		svc:            svc,
		digest:         digest,
		recorder:       recorder,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Production serves the production collection.
func (h *DashboardHandler) Production(c *gin.Context) {
	data, err := h.svc.Production(c.Request.Context())
	h.respond(c, "production", data, err)
}

// Defects serves the defect collection.
func (h *DashboardHandler) Defects(c *gin.Context) {
	data, err := h.svc.Defects(c.Request.Context())
	h.respond(c, "defects", data, err)
}

// Quality serves the quality collection.
func (h *DashboardHandler) Quality(c *gin.Context) {
	data, err := h.svc.Quality(c.Request.Context())
	h.respond(c, "quality", data, err)
}

// Maintenance serves the maintenance collection.
func (h *DashboardHandler) Maintenance(c *gin.Context) {
	data, err := h.svc.Maintenance(c.Request.Context())
	h.respond(c, "maintenance", data, err)
}

// KeyMetrics serves the aggregates recomputed over the current dataset.
func (h *DashboardHandler) KeyMetrics(c *gin.Context) {
	data, err := h.svc.KeyMetrics(c.Request.Context())
	h.respond(c, "metrics", data, err)
}

// Overview serves all collections and metrics from one snapshot.
func (h *DashboardHandler) Overview(c *gin.Context) {
	limit, ok := h.limitParam(c, "history", 0)
	if !ok {
		return
	}
	data, err := h.svc.Overview(c.Request.Context(), limit)
	h.respond(c, "overview", data, err)
}

// Snapshots serves the archived metric history.
func (h *DashboardHandler) Snapshots(c *gin.Context) {
	limit, ok := h.limitParam(c, "limit", defaultHistoryLimit)
	if !ok {
		return
	}
	data, err := h.svc.History(c.Request.Context(), limit)
	h.respond(c, "snapshots", data, err)
}

// Template serves the static CSV template as a download.
func (h *DashboardHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ingest.TemplateFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(h.svc.Template()))
}

// Upload accepts either a multipart form with a "file" field or a raw text/csv body.
func (h *DashboardHandler) Upload(c *gin.Context) {
	opts := dashboard.UploadOptions{}
	if raw := c.Query("strict"); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "strict must be a boolean"})
			return
		}
		opts.Strict = strict
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	filename, body, err := h.openUpload(c)
	if err != nil {
		h.logger.Warn("invalid upload request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": UploadErrorMessage})
		return
	}
	defer body.Close()

	result, err := h.svc.Upload(c.Request.Context(), filename, body, opts)
	if err != nil {
		h.logger.Warn("upload rejected", zap.String("filename", filename), zap.Error(err))
		if errors.Is(err, dashboard.ErrStrictRejected) && result != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": UploadErrorMessage, "warnings": result.Warnings})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": UploadErrorMessage})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Sync re-imports the dataset from the configured spreadsheet.
func (h *DashboardHandler) Sync(c *gin.Context) {
	result, err := h.svc.SyncFromSheet(c.Request.Context())
	if err != nil {
		if errors.Is(err, dashboard.ErrSheetNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sheet import not configured"})
			return
		}
		h.logger.Error("sheet sync failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": UploadErrorMessage})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendDigest pushes the current metrics digest, optionally to an explicit recipient.
func (h *DashboardHandler) SendDigest(c *gin.Context) {
	if h.digest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "digest notifier not configured"})
		return
	}

	var req models.DigestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid digest payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if err := h.digest.SendDigest(c.Request.Context(), req); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "digest notifier not configured"})
			return
		}
		h.logger.Error("failed sending digest", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send digest"})
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *DashboardHandler) openUpload(c *gin.Context) (string, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "text/csv" || mediaType == "text/plain" {
		return c.Query("filename"), c.Request.Body, nil
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		return "", nil, fmt.Errorf("read form file %q: %w", uploadField, err)
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open form file %q: %w", header.Filename, err)
	}
	return header.Filename, file, nil
}

func (h *DashboardHandler) limitParam(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a non-negative integer", name)})
		return 0, false
	}
	if n > maxHistoryLimit {
		n = maxHistoryLimit
	}
	return n, true
}

func (h *DashboardHandler) respond(c *gin.Context, resource string, data any, err error) {
	if err != nil {
		h.recorder.RecordFetch(resource, "error")
		h.logger.Error("fetch failed", zap.String("resource", resource), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": FetchErrorMessage})
		return
	}
	h.recorder.RecordFetch(resource, "ok")
	c.JSON(http.StatusOK, data)
}
