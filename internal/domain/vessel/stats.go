package vessel

import "time"

// MetricStats holds the aggregate of one metric over a window. Pointers are
// nil when the window held no samples.
type MetricStats struct {
	Min *float64
	Max *float64
	Avg *float64
}

// StatsWindow is the aggregate view of telemetry around an event. It is
// computed fresh per analysis request and never stored.
type StatsWindow struct {
	VesselID    string
	WindowStart time.Time
	WindowEnd   time.Time
	SampleCount int

	EngineRPM    MetricStats
	EngineTemp   MetricStats
	OilPressure  MetricStats
	FuelPressure MetricStats
	CoolantTemp  MetricStats

	AvgDataQuality *float64
}

// LowQuality reports whether the window's average data quality is known and
// below the 0.6 degradation threshold.
func (s StatsWindow) LowQuality() bool {
	return s.AvgDataQuality != nil && *s.AvgDataQuality < 0.6
}

// ToMap flattens the window into the snake_case map used in prompts and in
// the stored evidence block. Every numeric value is a float64 (or nil) so
// serialization is uniform regardless of the store's native column types.
func (s StatsWindow) ToMap() map[string]any {
	m := map[string]any{
		"sample_count": float64(s.SampleCount),
	}
	putMetric(m, "engine_rpm", s.EngineRPM)
	putMetric(m, "engine_temp", s.EngineTemp)
	putMetric(m, "oil_pressure", s.OilPressure)
	putMetric(m, "fuel_pressure", s.FuelPressure)
	putMetric(m, "coolant_temp", s.CoolantTemp)
	putFloat(m, "avg_data_quality", s.AvgDataQuality)
	return m
}

func putMetric(m map[string]any, name string, ms MetricStats) {
	putFloat(m, "min_"+name, ms.Min)
	putFloat(m, "max_"+name, ms.Max)
	putFloat(m, "avg_"+name, ms.Avg)
}

func putFloat(m map[string]any, key string, v *float64) {
	if v == nil {
		m[key] = nil
		return
	}
	m[key] = *v
}
