package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_SeedsSample(t *testing.T) {
	s := New(models.SampleDataset(), SourceSample, nil)

	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, SourceSample, snap.Source)
	assert.Len(t, s.Production(), 6)
	assert.Len(t, s.Defects(), 4)
	assert.Len(t, s.Quality(), 4)
	assert.Len(t, s.Maintenance(), 5)
}

func TestNew_NilDatasetIsEmpty(t *testing.T) {
	s := New(nil, SourceSample, nil)

	assert.Equal(t, SourceEmpty, s.Snapshot().Source)
	assert.NotNil(t, s.Production())
	assert.Empty(t, s.Production())
	assert.Equal(t, models.KeyMetrics{}, s.KeyMetrics())
}

func TestReplace_SwapsWholeDataset(t *testing.T) {
	s := New(models.SampleDataset(), SourceSample, nil)

	next := &models.Dataset{
		Production: []models.ProductionRecord{
			{Time: "00:00", Units: 45, Efficiency: 92, Energy: 85},
			{Time: "04:00", Units: 38, Efficiency: 88, Energy: 82},
		},
	}
	snap := s.Replace(next, SourceUpload)

	assert.Equal(t, uint64(2), snap.Version)
	assert.Equal(t, SourceUpload, snap.Source)
	assert.Len(t, s.Production(), 2)
	assert.Empty(t, s.Defects())
	assert.Empty(t, s.Quality())
	assert.Empty(t, s.Maintenance())
	assert.Equal(t, models.KeyMetrics{TotalProduction: 83, AverageEfficiency: 90, AverageEnergy: 83.5}, s.KeyMetrics())
}

func TestReplace_CallerMutationNotVisible(t *testing.T) {
	s := New(nil, SourceEmpty, nil)
	ds := &models.Dataset{Defects: []models.DefectRecord{{Category: "Assembly", Count: 12}}}
	s.Replace(ds, SourceUpload)

	ds.Defects[0].Count = 0
	assert.Equal(t, 12, s.Defects()[0].Count)

	got := s.Defects()
	got[0].Count = 1
	assert.Equal(t, 12, s.Defects()[0].Count)
}

func TestInstancesAreIndependent(t *testing.T) {
	a := New(models.SampleDataset(), SourceSample, nil)
	b := New(models.SampleDataset(), SourceSample, nil)

	a.Replace(models.NewDataset(), SourceUpload)

	assert.Empty(t, a.Production())
	assert.Len(t, b.Production(), 6)
}

func TestReplace_ReadersNeverSeeMixedSnapshot(t *testing.T) {
	oldDS := datasetTagged("old", 3)
	newDS := datasetTagged("new", 5)
	s := New(oldDS, SourceSample, nil)

	var wg sync.WaitGroup
	start := make(chan struct{})
	mixed := make(chan string, 64)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 500; j++ {
				snap := s.Snapshot()
				tag := snap.Dataset.Production[0].Time
				if snap.Dataset.Defects[0].Category != tag ||
					snap.Dataset.Quality[0].Name != tag ||
					snap.Dataset.Maintenance[0].Date != tag {
					mixed <- tag
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		for j := 0; j < 200; j++ {
			if j%2 == 0 {
				s.Replace(newDS, SourceUpload)
			} else {
				s.Replace(oldDS, SourceUpload)
			}
		}
	}()

	close(start)
	wg.Wait()
	close(mixed)

	for tag := range mixed {
		t.Fatalf("observed mixed snapshot around tag %q", tag)
	}
	assert.Equal(t, uint64(201), s.Snapshot().Version)
}

func datasetTagged(tag string, n int) *models.Dataset {
	ds := models.NewDataset()
	for i := 0; i < n; i++ {
		ds.Production = append(ds.Production, models.ProductionRecord{Time: tag, Units: i})
		ds.Defects = append(ds.Defects, models.DefectRecord{Category: tag, Count: i})
		ds.Quality = append(ds.Quality, models.QualityRecord{Name: tag, Value: float64(i)})
		ds.Maintenance = append(ds.Maintenance, models.MaintenanceRecord{Date: tag, Preventive: i})
	}
	return ds
}
