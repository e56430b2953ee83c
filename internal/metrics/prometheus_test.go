package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_RecordIngest(t *testing.T) {
	r := NewRecorder()
	before := testutil.ToFloat64(RowsIngested.WithLabelValues("defect"))
	warnBefore := testutil.ToFloat64(RowWarnings.WithLabelValues("unknown_type"))

	r.RecordIngest("upload", "ok", map[string]int{"defect": 3}, map[string]int{"unknown_type": 2}, 5*time.Millisecond)

	assert.Equal(t, before+3, testutil.ToFloat64(RowsIngested.WithLabelValues("defect")))
	assert.Equal(t, warnBefore+2, testutil.ToFloat64(RowWarnings.WithLabelValues("unknown_type")))
}

func TestRecorder_SetVersion(t *testing.T) {
	NewRecorder().SetVersion(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(DatasetVersion))
}
