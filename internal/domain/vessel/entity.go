package vessel

import (
	"time"
)

// Severity enum
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Event is a discrete anomaly detected for a vessel. Rows are written once
// by the generator and never mutated afterwards.
type Event struct {
	EventID         string    `json:"event_id"`
	Ts              time.Time `json:"ts"`
	VesselID        string    `json:"vessel_id"`
	SensorID        string    `json:"sensor_id"`
	Severity        Severity  `json:"severity"`
	EventType       string    `json:"event_type"`
	Description     string    `json:"description"`
	MetricsSnapshot *string   `json:"metrics_snapshot"` // opaque JSON captured at event time
}

// Sample is one telemetry reading for a vessel.
type Sample struct {
	VesselID         string    `json:"vessel_id"`
	Ts               time.Time `json:"ts"`
	EngineRPM        float64   `json:"engine_rpm"`
	EngineTemp       float64   `json:"engine_temp"`
	OilPressure      float64   `json:"oil_pressure"`
	FuelPressure     float64   `json:"fuel_pressure"`
	CoolantTemp      float64   `json:"coolant_temp"`
	DataQualityScore float64   `json:"data_quality_score"`
}
