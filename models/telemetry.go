package models

import "time"

// TelemetryItem is one tracked event or trace as stored by the Mongo sink.
type TelemetryItem struct {
	Kind         string             `bson:"kind" json:"kind"` // "event" or "trace"
	Name         string             `bson:"name" json:"name"`
	Severity     string             `bson:"severity,omitempty" json:"severity,omitempty"`
	Properties   map[string]string  `bson:"properties,omitempty" json:"properties,omitempty"`
	Measurements map[string]float64 `bson:"measurements,omitempty" json:"measurements,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}
