package models

import "fmt"

// Warning reasons attached to rows the ingestor could not use.
const (
	ReasonUnknownType   = "unknown_type"
	ReasonMissingField  = "missing_field"
	ReasonInvalidNumber = "invalid_number"
	ReasonNegativeCount = "negative_count"
)

// RowWarning describes a single input row that did not make it into the Dataset.
type RowWarning struct {
	Line   int        `json:"line" bson:"line"`
	Kind   RecordKind `json:"kind" bson:"kind"`
	Field  string     `json:"field,omitempty" bson:"field,omitempty"`
	Value  string     `json:"value,omitempty" bson:"value,omitempty"`
	Reason string     `json:"reason" bson:"reason"`
}

func (w RowWarning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("line %d: %s (%s)", w.Line, w.Reason, w.Kind)
	}
	return fmt.Sprintf("line %d: %s %s=%q (%s)", w.Line, w.Reason, w.Field, w.Value, w.Kind)
}
