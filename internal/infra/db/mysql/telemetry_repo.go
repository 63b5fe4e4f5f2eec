package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/oceanops/maritime-agent/internal/domain/vessel"
)

type TelemetryRepository struct {
	db *sql.DB
}

func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// Stats runs the single aggregate query over the window. A window with no
// rows yields SampleCount 0 and nil aggregates, which is a valid result.
func (r *TelemetryRepository) Stats(ctx context.Context, vesselID string, start, end time.Time) (domain.StatsWindow, error) {
	const q = `
SELECT
  count(*) AS sample_count,
  min(engine_rpm), max(engine_rpm), avg(engine_rpm),
  min(engine_temp), max(engine_temp), avg(engine_temp),
  min(oil_pressure), max(oil_pressure), avg(oil_pressure),
  min(fuel_pressure), max(fuel_pressure), avg(fuel_pressure),
  min(coolant_temp), max(coolant_temp), avg(coolant_temp),
  avg(data_quality_score) AS avg_data_quality
FROM telemetry
WHERE vessel_id=? AND ts BETWEEN ? AND ?;`

	row := r.db.QueryRowContext(ctx, q, vesselID, start, end)
	return scanStats(row, vesselID, start, end)
}

// Save inserts one telemetry reading.
func (r *TelemetryRepository) Save(ctx context.Context, s *domain.Sample) error {
	const q = `
INSERT INTO telemetry
  (vessel_id, ts, engine_rpm, engine_temp, oil_pressure, fuel_pressure, coolant_temp, data_quality_score)
VALUES (?,?,?,?,?,?,?,?);`
	_, err := r.db.ExecContext(ctx, q,
		s.VesselID, s.Ts, s.EngineRPM, s.EngineTemp, s.OilPressure, s.FuelPressure, s.CoolantTemp, s.DataQualityScore,
	)
	return err
}

// scanStats maps the aggregate row into a StatsWindow, coercing every
// numeric column into float64 so downstream serialization is uniform.
func scanStats(row *sql.Row, vesselID string, start, end time.Time) (domain.StatsWindow, error) {
	var count int64
	agg := make([]sql.NullFloat64, 16)
	dest := make([]any, 0, 17)
	dest = append(dest, &count)
	for i := range agg {
		dest = append(dest, &agg[i])
	}
	if err := row.Scan(dest...); err != nil {
		return domain.StatsWindow{}, err
	}

	w := domain.StatsWindow{
		VesselID:    vesselID,
		WindowStart: start,
		WindowEnd:   end,
		SampleCount: int(count),
	}
	w.EngineRPM = metric(agg[0], agg[1], agg[2])
	w.EngineTemp = metric(agg[3], agg[4], agg[5])
	w.OilPressure = metric(agg[6], agg[7], agg[8])
	w.FuelPressure = metric(agg[9], agg[10], agg[11])
	w.CoolantTemp = metric(agg[12], agg[13], agg[14])
	w.AvgDataQuality = nullable(agg[15])
	return w, nil
}

func metric(min, max, avg sql.NullFloat64) domain.MetricStats {
	return domain.MetricStats{Min: nullable(min), Max: nullable(max), Avg: nullable(avg)}
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
