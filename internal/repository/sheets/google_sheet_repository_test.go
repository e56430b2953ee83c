package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	values [][]interface{}
	err    error
	ranges []string
}

func (s *stubRepo) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	s.ranges = append(s.ranges, sheetRange)
	return s.values, s.err
}

func TestReadRows_StringifiesCells(t *testing.T) {
	repo := &stubRepo{values: [][]interface{}{
		{"type", "category", "count"},
		{"defect", "Assembly", float64(12)},
		{"defect", nil, "3"},
	}}

	rows, err := ReadRows(context.Background(), repo, "Data!A:L")
	require.NoError(t, err)
	assert.Equal(t, []string{"Data!A:L"}, repo.ranges)
	assert.Equal(t, [][]string{
		{"type", "category", "count"},
		{"defect", "Assembly", "12"},
		{"defect", "", "3"},
	}, rows)
}

func TestReadRows_PropagatesError(t *testing.T) {
	boom := errors.New("quota")
	_, err := ReadRows(context.Background(), &stubRepo{err: boom}, "Data!A:L")
	assert.ErrorIs(t, err, boom)
}
