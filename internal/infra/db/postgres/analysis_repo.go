package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	domain "github.com/oceanops/maritime-agent/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts a new analysis row. Always an insert: history is retained
// and "latest by created_at" is the authoritative read.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO ai_analyses
  (id, created_at, event_id, vessel_id, ai_summary, rag_sources)
VALUES ($1,$2,$3,$4,$5,$6);`

	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	sources := rec.RAGSources
	if sources == nil {
		sources = []string{}
	}
	_, err = r.db.ExecContext(ctx, q,
		rec.ID, createdAt, rec.EventID, rec.VesselID, string(doc), pq.Array(sources),
	)
	return err
}

// LatestByEvent returns the most recently created analysis for an event, or
// nil when none exists. A stored blob that no longer unmarshals is treated
// as a cache miss rather than an error.
func (r *AnalysisRepository) LatestByEvent(ctx context.Context, eventID string) (*domain.Record, error) {
	const q = `
SELECT id, created_at, event_id, vessel_id, ai_summary, rag_sources
FROM ai_analyses
WHERE event_id=$1
ORDER BY created_at DESC
LIMIT 1;`

	row := r.db.QueryRowContext(ctx, q, eventID)

	var rec domain.Record
	var doc string
	var sources pq.StringArray
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.EventID, &rec.VesselID, &doc, &sources); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(doc), &rec.Document); err != nil {
		return nil, nil
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.RAGSources = []string(sources)
	return &rec, nil
}
