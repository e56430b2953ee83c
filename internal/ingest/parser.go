package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

// ErrEmptyInput indicates the upload did not even carry a header row.
var ErrEmptyInput = errors.New("input has no header row")

// ErrInputTooLarge indicates the upload exceeded the configured byte limit.
var ErrInputTooLarge = errors.New("input exceeds size limit")

const (
	typeColumn = "type"
	utf8BOM    = "\ufeff"
)

// Result is the outcome of a successful ingestion.
type Result struct {
	Dataset  *models.Dataset
	Warnings []models.RowWarning
	Rows     int
}

// Accepted reports how many rows ended up in the dataset.
func (r *Result) Accepted() int {
	if r == nil || r.Dataset == nil {
		return 0
	}
	return len(r.Dataset.Production) + len(r.Dataset.Defects) + len(r.Dataset.Quality) + len(r.Dataset.Maintenance)
}

// Parser turns delimited text into a Dataset.
type Parser struct {
	logger   *zap.Logger
	maxBytes int64
}

// Option customises a Parser.
type Option func(*Parser)

// WithMaxBytes caps the number of bytes Parse will read. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(p *Parser) {
		p.maxBytes = n
	}
}

// NewParser constructs a Parser.
func NewParser(logger *zap.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads comma-separated rows from r. The first row holds the column headers;
// any later row whose type cell reads "type" redeclares them for the rows below it.
// Individual malformed rows never fail the parse, they are reported as warnings.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Result, error) {
	if p.maxBytes > 0 {
		r = &capReader{r: r, remaining: p.maxBytes}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	c := newClassifier(header, p.logger)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		c.classify(line, record)
	}

	return c.result(), nil
}

// ParseRows classifies rows that were already split by another source, such as a
// spreadsheet range. rows[0] is the header.
func (p *Parser) ParseRows(ctx context.Context, rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	c := newClassifier(rows[0], p.logger)
	for i, record := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.classify(i+2, record)
	}
	return c.result(), nil
}

// capReader fails once more than remaining bytes have been read.
type capReader struct {
	r         io.Reader
	remaining int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrInputTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, ErrInputTooLarge
	}
	return n, err
}

func normalizeHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}
