package ingest

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

type classifier struct {
	columns  map[string]int
	dataset  *models.Dataset
	warnings []models.RowWarning
	rows     int
	logger   *zap.Logger
}

func newClassifier(header []string, logger *zap.Logger) *classifier {
	return &classifier{
		columns: normalizeHeader(header),
		dataset: models.NewDataset(),
		logger:  logger,
	}
}

func (c *classifier) result() *Result {
	return &Result{
		Dataset:  c.dataset,
		Warnings: c.warnings,
		Rows:     c.rows,
	}
}

func (c *classifier) classify(line int, record []string) {
	if isBlank(record) {
		return
	}

	rawType, _ := c.cell(record, typeColumn)
	if strings.EqualFold(strings.TrimSpace(rawType), typeColumn) {
		c.columns = normalizeHeader(record)
		return
	}

	c.rows++
	row := rowReader{line: line, record: record, columns: c.columns}

	kind := models.ParseRecordKind(rawType)
	switch kind {
	case models.KindProduction:
		rec := models.ProductionRecord{
			Time:       row.label(kind, "time"),
			Units:      row.count(kind, "units"),
			Efficiency: row.number(kind, "efficiency"),
			Energy:     row.number(kind, "energy"),
		}
		if c.accept(row) {
			c.dataset.Production = append(c.dataset.Production, rec)
		}
	case models.KindDefect:
		rec := models.DefectRecord{
			Category: row.label(kind, "category"),
			Count:    row.count(kind, "count"),
		}
		if c.accept(row) {
			c.dataset.Defects = append(c.dataset.Defects, rec)
		}
	case models.KindQuality:
		rec := models.QualityRecord{
			Name:  row.label(kind, "name"),
			Value: row.number(kind, "value"),
		}
		if c.accept(row) {
			c.dataset.Quality = append(c.dataset.Quality, rec)
		}
	case models.KindMaintenance:
		rec := models.MaintenanceRecord{
			Date:       row.label(kind, "date"),
			Preventive: row.count(kind, "preventive"),
			Corrective: row.count(kind, "corrective"),
		}
		if c.accept(row) {
			c.dataset.Maintenance = append(c.dataset.Maintenance, rec)
		}
	default:
		w := models.RowWarning{
			Line:   line,
			Kind:   models.KindUnknown,
			Field:  typeColumn,
			Value:  rawType,
			Reason: models.ReasonUnknownType,
		}
		c.logger.Debug("skip row with unrecognized type", zap.Int("line", line), zap.String("type", rawType))
		c.warnings = append(c.warnings, w)
	}
}

func (c *classifier) accept(row rowReader) bool {
	if len(row.warnings) == 0 {
		return true
	}
	for _, w := range row.warnings {
		c.logger.Debug("skip malformed row", zap.String("warning", w.String()))
	}
	c.warnings = append(c.warnings, row.warnings...)
	return false
}

func (c *classifier) cell(record []string, name string) (string, bool) {
	idx, ok := c.columns[name]
	if !ok || idx >= len(record) {
		return "", false
	}
	return record[idx], true
}

// rowReader extracts typed fields from one record, collecting a warning for every
// field it cannot use.
type rowReader struct {
	line     int
	record   []string
	columns  map[string]int
	warnings []models.RowWarning
}

func (r *rowReader) raw(name string) (string, bool) {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.record) {
		return "", false
	}
	return strings.TrimSpace(r.record[idx]), true
}

func (r *rowReader) warn(kind models.RecordKind, field, value, reason string) {
	r.warnings = append(r.warnings, models.RowWarning{
		Line:   r.line,
		Kind:   kind,
		Field:  field,
		Value:  value,
		Reason: reason,
	})
}

func (r *rowReader) label(kind models.RecordKind, field string) string {
	value, ok := r.raw(field)
	if !ok {
		r.warn(kind, field, "", models.ReasonMissingField)
	}
	return value
}

func (r *rowReader) number(kind models.RecordKind, field string) float64 {
	value, ok := r.raw(field)
	if !ok || value == "" {
		r.warn(kind, field, value, models.ReasonMissingField)
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		r.warn(kind, field, value, models.ReasonInvalidNumber)
		return 0
	}
	return parsed
}

func (r *rowReader) count(kind models.RecordKind, field string) int {
	before := len(r.warnings)
	parsed := r.number(kind, field)
	if len(r.warnings) > before {
		return 0
	}
	if parsed != math.Trunc(parsed) || math.Abs(parsed) > math.MaxInt32 {
		value, _ := r.raw(field)
		r.warn(kind, field, value, models.ReasonInvalidNumber)
		return 0
	}
	if parsed < 0 {
		value, _ := r.raw(field)
		r.warn(kind, field, value, models.ReasonNegativeCount)
		return 0
	}
	return int(parsed)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
