package models

import "time"

// MetricsSnapshot is the archived view of KeyMetrics for one dataset version.
type MetricsSnapshot struct {
	Version   uint64     `bson:"version" json:"version"`
	Source    string     `bson:"source" json:"source"`
	Trigger   string     `bson:"trigger" json:"trigger"`
	Metrics   KeyMetrics `bson:"metrics" json:"metrics"`
	Records   int        `bson:"records" json:"records"`
	DataAsOf  time.Time  `bson:"data_as_of" json:"dataAsOf"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
}

// UploadRecord is the archived trace of one accepted upload.
type UploadRecord struct {
	ID        string         `bson:"_id" json:"id"`
	Filename  string         `bson:"filename" json:"filename"`
	Version   uint64         `bson:"version" json:"version"`
	Counts    map[string]int `bson:"counts" json:"counts"`
	Warnings  []RowWarning   `bson:"warnings" json:"warnings"`
	Dataset   *Dataset       `bson:"dataset" json:"dataset"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}
