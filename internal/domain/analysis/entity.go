package analysis

import "time"

// DataSources is the static provenance tag attached to every analysis. The
// retrieval source list is separate and always empty in this version.
func DataSources() []string {
	return []string{"timescaledb.telemetry", "timescaledb.events"}
}

// Evidence carries the context the analysis was computed from.
type Evidence struct {
	Window string         `json:"window"`
	Stats  map[string]any `json:"stats"`
}

// Analysis is the structured explanation of one event. Immutable once
// created; several analyses for the same event may coexist and the latest
// by creation time is authoritative.
type Analysis struct {
	EventID            string   `json:"event_id"`
	Summary            string   `json:"summary"`
	PossibleCauses     []string `json:"possible_causes"`
	RecommendedActions []string `json:"recommended_actions"`
	Confidence         int      `json:"confidence"`
	DataQualityNotes   string   `json:"data_quality_notes"`
	DataSources        []string `json:"data_sources"`
	Evidence           Evidence `json:"evidence"`
}

// Record is the persisted form of an Analysis, one append-only row per
// computation.
type Record struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	VesselID   string    `json:"vessel_id"`
	CreatedAt  time.Time `json:"created_at"`
	Document   Analysis  `json:"document"`
	RAGSources []string  `json:"rag_sources"`
}
