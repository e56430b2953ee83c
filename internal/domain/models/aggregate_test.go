package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMetrics_TwoProductionRows(t *testing.T) {
	d := &Dataset{
		Production: []ProductionRecord{
			{Time: "00:00", Units: 45, Efficiency: 92, Energy: 85},
			{Time: "04:00", Units: 38, Efficiency: 88, Energy: 82},
		},
	}

	assert.Equal(t, KeyMetrics{
		TotalProduction:   83,
		AverageEfficiency: 90.0,
		TotalDefects:      0,
		AverageEnergy:     83.5,
	}, d.KeyMetrics())
}

func TestKeyMetrics_SampleDataset(t *testing.T) {
	m := SampleDataset().KeyMetrics()

	assert.Equal(t, 280, m.TotalProduction)
	assert.Equal(t, 91.3, m.AverageEfficiency)
	assert.Equal(t, 28, m.TotalDefects)
	assert.Equal(t, 86.8, m.AverageEnergy)
}

func TestKeyMetrics_Empty(t *testing.T) {
	assert.Equal(t, KeyMetrics{}, NewDataset().KeyMetrics())

	var nilDataset *Dataset
	assert.Equal(t, KeyMetrics{}, nilDataset.KeyMetrics())
}

func TestDataset_CloneIsIndependent(t *testing.T) {
	original := SampleDataset()
	clone := original.Clone()

	clone.Defects[0].Count = 999
	clone.Production = append(clone.Production, ProductionRecord{Time: "24:00"})

	assert.Equal(t, 12, original.Defects[0].Count)
	assert.Len(t, original.Production, 6)
}

func TestParseRecordKind(t *testing.T) {
	cases := map[string]RecordKind{
		"production":  KindProduction,
		" Defect ":    KindDefect,
		"QUALITY":     KindQuality,
		"maintenance": KindMaintenance,
		"":            KindUnknown,
		"defects":     KindUnknown,
		"unknown":     KindUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseRecordKind(raw), "raw=%q", raw)
	}
}
