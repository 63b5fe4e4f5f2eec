package analysis

import "context"

// Repository port for the analysis store. Save always inserts a new row;
// history is retained. LatestByEvent returns nil when no analysis exists.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	LatestByEvent(ctx context.Context, eventID string) (*Record, error)
}

// Generator port for the external text-generation service. Implementations
// return the raw response text, or a *GenerationError on transport/API
// failure. Callers must not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
