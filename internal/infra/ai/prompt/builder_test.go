package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oceanops/maritime-agent/internal/domain/vessel"
)

func sampleEvent() *vessel.Event {
	return &vessel.Event{
		EventID:     "9f7c9a4e-2a58-4d0f-a2a6-3f1e8e2a9b11",
		Ts:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		VesselID:    "vessel_001",
		SensorID:    "engine_temp",
		Severity:    vessel.SeverityCritical,
		EventType:   "overtemp",
		Description: "Engine temperature spike detected.",
	}
}

func sampleWindow() vessel.StatsWindow {
	avg := 98.2
	q := 0.95
	return vessel.StatsWindow{
		VesselID:       "vessel_001",
		SampleCount:    42,
		EngineTemp:     vessel.MetricStats{Min: &avg, Max: &avg, Avg: &avg},
		AvgDataQuality: &q,
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	evt := sampleEvent()
	stats := sampleWindow()
	start := evt.Ts.Add(-30 * time.Minute)
	end := evt.Ts.Add(5 * time.Minute)

	a := Build(evt, stats, start, end)
	b := Build(evt, stats, start, end)
	assert.Equal(t, a, b)
}

func TestBuildEmbedsEventAndWindow(t *testing.T) {
	evt := sampleEvent()
	start := evt.Ts.Add(-30 * time.Minute)
	end := evt.Ts.Add(5 * time.Minute)

	p := Build(evt, sampleWindow(), start, end)

	assert.Contains(t, p, "Event: overtemp (severity CRITICAL)")
	assert.Contains(t, p, "Description: Engine temperature spike detected.")
	assert.Contains(t, p, "Vessel: vessel_001")
	assert.Contains(t, p, "Timestamp: 2026-03-01T12:00:00Z")
	assert.Contains(t, p, "Data window: 2026-03-01T11:30:00Z to 2026-03-01T12:05:00Z")
	assert.Contains(t, p, `"sample_count": 42`)
	assert.Contains(t, p, `"avg_data_quality": 0.95`)
}

func TestBuildCarriesFormattingRules(t *testing.T) {
	p := Build(sampleEvent(), sampleWindow(), time.Now(), time.Now())

	assert.Contains(t, p, "Return JSON only with keys: summary, possible_causes, recommended_actions, confidence, data_quality_notes.")
	assert.Contains(t, p, "If sample_count is 0, say data is missing and lower confidence.")
	assert.Contains(t, p, "If avg_data_quality is below 0.6, mention low data quality and lower confidence.")
}

func TestBuildRendersEmptyWindowAsNulls(t *testing.T) {
	p := Build(sampleEvent(), vessel.StatsWindow{}, time.Now(), time.Now())

	assert.Contains(t, p, `"sample_count": 0`)
	assert.Contains(t, p, `"avg_data_quality": null`)
	assert.True(t, strings.Contains(p, `"min_engine_rpm": null`))
}
