package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

func parse(t *testing.T, input string) *Result {
	t.Helper()
	res, err := NewParser(nil).Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestParse_TemplateRoundTrip(t *testing.T) {
	res := parse(t, Template())

	assert.Empty(t, res.Warnings)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, []models.ProductionRecord{{Time: "00:00", Units: 45, Efficiency: 92, Energy: 85}}, res.Dataset.Production)
	assert.Equal(t, []models.DefectRecord{{Category: "Assembly", Count: 12}}, res.Dataset.Defects)
	assert.Equal(t, []models.QualityRecord{{Name: "Excellent", Value: 65}}, res.Dataset.Quality)
	assert.Equal(t, []models.MaintenanceRecord{{Date: "Mon", Preventive: 4, Corrective: 1}}, res.Dataset.Maintenance)
}

func TestParse_Idempotent(t *testing.T) {
	input := "type,time,units,efficiency,energy,category,count\n" +
		"production,00:00,45,92,85,,\n" +
		"defect,,,,,Welding,8\n" +
		"production,04:00,38,88,82,,\n"

	first := parse(t, input)
	second := parse(t, input)

	assert.Equal(t, first.Dataset, second.Dataset)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestParse_InterleavedKindsKeepInputOrder(t *testing.T) {
	input := "type,time,units,efficiency,energy,category,count,name,value,date,preventive,corrective\n" +
		"production,08:00,52,95,90,,,,,,,\n" +
		"quality,,,,,,,Good,25,,,\n" +
		"production,00:00,45,92,85,,,,,,,\n" +
		"maintenance,,,,,,,,,Tue,3,2\n" +
		"defect,,,,,Painting,5,,,,,\n" +
		"quality,,,,,,,Poor,3,,,\n"

	res := parse(t, input)

	require.Len(t, res.Dataset.Production, 2)
	assert.Equal(t, "08:00", res.Dataset.Production[0].Time)
	assert.Equal(t, "00:00", res.Dataset.Production[1].Time)
	require.Len(t, res.Dataset.Quality, 2)
	assert.Equal(t, "Good", res.Dataset.Quality[0].Name)
	assert.Equal(t, "Poor", res.Dataset.Quality[1].Name)
	assert.Len(t, res.Dataset.Defects, 1)
	assert.Len(t, res.Dataset.Maintenance, 1)
	assert.Equal(t, 6, res.Accepted())
}

func TestParse_DefectIgnoresExtraneousColumns(t *testing.T) {
	input := "type,category,count,units,efficiency,comment\n" +
		"defect,Assembly,12,999,50,whatever\n"

	res := parse(t, input)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, []models.DefectRecord{{Category: "Assembly", Count: 12}}, res.Dataset.Defects)
	assert.Empty(t, res.Dataset.Production)
}

func TestParse_TypeIsCaseInsensitive(t *testing.T) {
	res := parse(t, "Type,Category,Count\n  DEFECT ,Testing,3\n")

	assert.Equal(t, []models.DefectRecord{{Category: "Testing", Count: 3}}, res.Dataset.Defects)
}

func TestParse_UnknownAndMissingTypeAreDropped(t *testing.T) {
	input := "type,category,count\n" +
		"unknown,Assembly,12\n" +
		",Welding,8\n" +
		"defect,Painting,5\n"

	res := parse(t, input)

	assert.Equal(t, []models.DefectRecord{{Category: "Painting", Count: 5}}, res.Dataset.Defects)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, models.ReasonUnknownType, res.Warnings[0].Reason)
	assert.Equal(t, 2, res.Warnings[0].Line)
	assert.Equal(t, "unknown", res.Warnings[0].Value)
	assert.Equal(t, models.ReasonUnknownType, res.Warnings[1].Reason)
	assert.Equal(t, 3, res.Warnings[1].Line)
}

func TestParse_NoTypeColumn(t *testing.T) {
	res := parse(t, "category,count\nAssembly,12\n")

	assert.Equal(t, 0, res.Accepted())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.ReasonUnknownType, res.Warnings[0].Reason)
}

func TestParse_MalformedNumbersBecomeWarnings(t *testing.T) {
	input := "type,time,units,efficiency,energy\n" +
		"production,00:00,abc,92,85\n" +
		"production,04:00,38,,82\n" +
		"production,08:00,4.5,95,90\n" +
		"production,12:00,48,90,88\n"

	res := parse(t, input)

	assert.Equal(t, []models.ProductionRecord{{Time: "12:00", Units: 48, Efficiency: 90, Energy: 88}}, res.Dataset.Production)
	require.Len(t, res.Warnings, 3)

	assert.Equal(t, models.RowWarning{Line: 2, Kind: models.KindProduction, Field: "units", Value: "abc", Reason: models.ReasonInvalidNumber}, res.Warnings[0])
	assert.Equal(t, models.RowWarning{Line: 3, Kind: models.KindProduction, Field: "efficiency", Value: "", Reason: models.ReasonMissingField}, res.Warnings[1])
	assert.Equal(t, models.RowWarning{Line: 4, Kind: models.KindProduction, Field: "units", Value: "4.5", Reason: models.ReasonInvalidNumber}, res.Warnings[2])
}

func TestParse_NegativeCount(t *testing.T) {
	res := parse(t, "type,category,count\ndefect,Assembly,-2\n")

	assert.Empty(t, res.Dataset.Defects)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.ReasonNegativeCount, res.Warnings[0].Reason)
}

func TestParse_IntegralDecimalAccepted(t *testing.T) {
	res := parse(t, "type,date,preventive,corrective\nmaintenance,Wed,5.0, 0\n")

	assert.Equal(t, []models.MaintenanceRecord{{Date: "Wed", Preventive: 5, Corrective: 0}}, res.Dataset.Maintenance)
}

func TestParse_ShortRowReportsMissingField(t *testing.T) {
	res := parse(t, "type,name,value\nquality,Excellent\n")

	assert.Empty(t, res.Dataset.Quality)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "value", res.Warnings[0].Field)
	assert.Equal(t, models.ReasonMissingField, res.Warnings[0].Reason)
}

func TestParse_SkipsBlankLinesAndBOM(t *testing.T) {
	res := parse(t, "\ufefftype,name,value\n\nquality,Good,25\n,,\n")

	assert.Empty(t, res.Warnings)
	assert.Equal(t, []models.QualityRecord{{Name: "Good", Value: 25}}, res.Dataset.Quality)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := NewParser(nil).Parse(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParse_SyntaxErrorFails(t *testing.T) {
	_, err := NewParser(nil).Parse(context.Background(), strings.NewReader("type,name,value\nquality,\"Good,25\n"))
	require.Error(t, err)
}

func TestParse_ReadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := NewParser(nil).Parse(context.Background(), &failingReader{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestParse_SizeLimit(t *testing.T) {
	p := NewParser(nil, WithMaxBytes(16))

	_, err := p.Parse(context.Background(), strings.NewReader(Template()))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	res, err := NewParser(nil, WithMaxBytes(int64(len(Template())))).Parse(context.Background(), strings.NewReader(Template()))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Accepted())
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).Parse(ctx, strings.NewReader(Template()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRows(t *testing.T) {
	rows := [][]string{
		{"type", "category", "count"},
		{"defect", "Assembly", "12"},
		{"bogus", "x", "1"},
	}

	res, err := NewParser(nil).ParseRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, []models.DefectRecord{{Category: "Assembly", Count: 12}}, res.Dataset.Defects)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 3, res.Warnings[0].Line)

	_, err = NewParser(nil).ParseRows(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

type failingReader struct {
	err error
}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, f.err
}
