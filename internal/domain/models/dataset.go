package models

// Dataset is one complete snapshot of factory metrics. A Dataset is never mutated
// once it has been handed to the store; replacement happens wholesale.
type Dataset struct {
	Production  []ProductionRecord  `json:"production" bson:"production"`
	Defects     []DefectRecord      `json:"defects" bson:"defects"`
	Quality     []QualityRecord     `json:"quality" bson:"quality"`
	Maintenance []MaintenanceRecord `json:"maintenance" bson:"maintenance"`
}

// NewDataset returns a Dataset with non-nil empty collections so that it always
// serializes as arrays.
func NewDataset() *Dataset {
	return &Dataset{
		Production:  []ProductionRecord{},
		Defects:     []DefectRecord{},
		Quality:     []QualityRecord{},
		Maintenance: []MaintenanceRecord{},
	}
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return NewDataset()
	}
	return &Dataset{
		Production:  append([]ProductionRecord{}, d.Production...),
		Defects:     append([]DefectRecord{}, d.Defects...),
		Quality:     append([]QualityRecord{}, d.Quality...),
		Maintenance: append([]MaintenanceRecord{}, d.Maintenance...),
	}
}

// Counts reports the number of records held per kind.
func (d *Dataset) Counts() map[RecordKind]int {
	if d == nil {
		return map[RecordKind]int{}
	}
	return map[RecordKind]int{
		KindProduction:  len(d.Production),
		KindDefect:      len(d.Defects),
		KindQuality:     len(d.Quality),
		KindMaintenance: len(d.Maintenance),
	}
}

// KeyMetrics are the scalar aggregates shown on the dashboard header.
type KeyMetrics struct {
	TotalProduction   int     `json:"totalProduction" bson:"total_production"`
	AverageEfficiency float64 `json:"averageEfficiency" bson:"average_efficiency"`
	TotalDefects      int     `json:"totalDefects" bson:"total_defects"`
	AverageEnergy     float64 `json:"averageEnergy" bson:"average_energy"`
}
