package postgres

import (
	"context"
	"database/sql"

	domain "github.com/oceanops/maritime-agent/internal/domain/vessel"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `event_id, ts, vessel_id, sensor_id, severity, event_type, description, metrics_snapshot`

// Get returns the event by id, or nil when no row matches.
func (r *EventRepository) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	const q = `
SELECT ` + eventColumns + `
FROM events
WHERE event_id=$1;`
	return scanEvent(r.db.QueryRowContext(ctx, q, eventID))
}

// Latest returns the newest event, optionally scoped to one vessel.
func (r *EventRepository) Latest(ctx context.Context, vesselID string) (*domain.Event, error) {
	if vesselID != "" {
		const q = `
SELECT ` + eventColumns + `
FROM events
WHERE vessel_id=$1
ORDER BY ts DESC
LIMIT 1;`
		return scanEvent(r.db.QueryRowContext(ctx, q, vesselID))
	}
	const q = `
SELECT ` + eventColumns + `
FROM events
ORDER BY ts DESC
LIMIT 1;`
	return scanEvent(r.db.QueryRowContext(ctx, q))
}

// Save inserts an event row. Events are append-only.
func (r *EventRepository) Save(ctx context.Context, e *domain.Event) error {
	const q = `
INSERT INTO events (` + eventColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	var snapshot sql.NullString
	if e.MetricsSnapshot != nil {
		snapshot = sql.NullString{String: *e.MetricsSnapshot, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		e.EventID, e.Ts, e.VesselID, e.SensorID, string(e.Severity), e.EventType, e.Description, snapshot,
	)
	return err
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	var e domain.Event
	var severity string
	var snapshot sql.NullString
	if err := row.Scan(
		&e.EventID, &e.Ts, &e.VesselID, &e.SensorID, &severity, &e.EventType, &e.Description, &snapshot,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.Ts = e.Ts.UTC()
	e.Severity = domain.Severity(severity)
	if snapshot.Valid {
		e.MetricsSnapshot = &snapshot.String
	}
	return &e, nil
}
