package vessel

import (
	"context"
	"time"
)

// EventRepository port for the event store. Reads return nil (no error)
// when nothing matches.
type EventRepository interface {
	Get(ctx context.Context, eventID string) (*Event, error)
	Latest(ctx context.Context, vesselID string) (*Event, error)
	Save(ctx context.Context, e *Event) error
}

// TelemetryRepository port for the telemetry store. Stats over an empty
// window is a valid result (SampleCount 0, nil aggregates), not an error.
type TelemetryRepository interface {
	Stats(ctx context.Context, vesselID string, start, end time.Time) (StatsWindow, error)
	Save(ctx context.Context, s *Sample) error
}
