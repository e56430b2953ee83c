package models

import "strings"

// RecordKind identifies which collection an uploaded row belongs to.
type RecordKind string

const (
	KindProduction  RecordKind = "production"
	KindDefect      RecordKind = "defect"
	KindQuality     RecordKind = "quality"
	KindMaintenance RecordKind = "maintenance"
	KindUnknown     RecordKind = "unknown"
)

// ParseRecordKind maps a raw discriminator cell onto a RecordKind.
func ParseRecordKind(raw string) RecordKind {
	switch RecordKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindProduction:
		return KindProduction
	case KindDefect:
		return KindDefect
	case KindQuality:
		return KindQuality
	case KindMaintenance:
		return KindMaintenance
	default:
		return KindUnknown
	}
}

// ProductionRecord captures output for one time bucket.
type ProductionRecord struct {
	Time       string  `json:"time" bson:"time"`
	Units      int     `json:"units" bson:"units"`
	Efficiency float64 `json:"efficiency" bson:"efficiency"`
	Energy     float64 `json:"energy" bson:"energy"`
}

// DefectRecord captures the defect count of one category.
type DefectRecord struct {
	Category string `json:"category" bson:"category"`
	Count    int    `json:"count" bson:"count"`
}

// QualityRecord captures one quality bucket score.
type QualityRecord struct {
	Name  string  `json:"name" bson:"name"`
	Value float64 `json:"value" bson:"value"`
}

// MaintenanceRecord captures preventive and corrective interventions for one day.
type MaintenanceRecord struct {
	Date       string `json:"date" bson:"date"`
	Preventive int    `json:"preventive" bson:"preventive"`
	Corrective int    `json:"corrective" bson:"corrective"`
}
