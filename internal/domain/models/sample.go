package models

// SampleDataset returns the bundled sample values served before any upload.
func SampleDataset() *Dataset {
	return &Dataset{
		Production: []ProductionRecord{
			{Time: "00:00", Units: 45, Efficiency: 92, Energy: 85},
			{Time: "04:00", Units: 38, Efficiency: 88, Energy: 82},
			{Time: "08:00", Units: 52, Efficiency: 95, Energy: 90},
			{Time: "12:00", Units: 48, Efficiency: 90, Energy: 88},
			{Time: "16:00", Units: 55, Efficiency: 94, Energy: 92},
			{Time: "20:00", Units: 42, Efficiency: 89, Energy: 84},
		},
		Defects: []DefectRecord{
			{Category: "Assembly", Count: 12},
			{Category: "Welding", Count: 8},
			{Category: "Painting", Count: 5},
			{Category: "Testing", Count: 3},
		},
		Quality: []QualityRecord{
			{Name: "Excellent", Value: 65},
			{Name: "Good", Value: 25},
			{Name: "Average", Value: 7},
			{Name: "Poor", Value: 3},
		},
		Maintenance: []MaintenanceRecord{
			{Date: "Mon", Preventive: 4, Corrective: 1},
			{Date: "Tue", Preventive: 3, Corrective: 2},
			{Date: "Wed", Preventive: 5, Corrective: 0},
			{Date: "Thu", Preventive: 4, Corrective: 1},
			{Date: "Fri", Preventive: 3, Corrective: 2},
		},
	}
}
