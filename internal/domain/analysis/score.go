package analysis

import (
	"strings"

	"github.com/oceanops/maritime-agent/internal/domain/vessel"
)

// FallbackSummary is used whenever the model produced no usable summary.
const FallbackSummary = "No summary returned by model."

// Degradation notes, appended in this order when their condition holds.
const (
	NoteLowQuality     = "Data quality is low in the context window."
	NoteNoSamples      = "No telemetry samples found in the context window."
	NoteLLMUnavailable = "LLM unavailable, using fallback response."
)

const defaultConfidence = 50

// Confidence caps per degradation signal. They compose by repeated minimum.
const (
	capNoSamples  = 20
	capLowQuality = 40
	capGenFailed  = 30
)

// Compose merges the parsed payload, the window stats and the generation
// failure signal into the final Analysis. It is total: any combination of
// inputs yields a valid result.
func Compose(eventID string, p Payload, stats vessel.StatsWindow, genFailed bool, window string) Analysis {
	summary := FallbackSummary
	if p.Summary != nil {
		summary = *p.Summary
	}

	notes := ""
	if p.DataQualityNotes != nil {
		notes = *p.DataQualityNotes
	}
	if stats.LowQuality() {
		notes = appendNote(notes, NoteLowQuality)
	}
	if stats.SampleCount == 0 {
		notes = appendNote(notes, NoteNoSamples)
	}
	if genFailed {
		notes = appendNote(notes, NoteLLMUnavailable)
	}

	confidence := defaultConfidence
	if p.Confidence != nil {
		confidence = clamp(*p.Confidence, 0, 100)
	}
	caps := []struct {
		when bool
		cap  int
	}{
		{stats.SampleCount == 0, capNoSamples},
		{stats.LowQuality(), capLowQuality},
		{genFailed, capGenFailed},
	}
	for _, c := range caps {
		if c.when && c.cap < confidence {
			confidence = c.cap
		}
	}

	return Analysis{
		EventID:            eventID,
		Summary:            summary,
		PossibleCauses:     orEmpty(p.PossibleCauses),
		RecommendedActions: orEmpty(p.RecommendedActions),
		Confidence:         confidence,
		DataQualityNotes:   notes,
		DataSources:        DataSources(),
		Evidence: Evidence{
			Window: window,
			Stats:  stats.ToMap(),
		},
	}
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + " " + note
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
