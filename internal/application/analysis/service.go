package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/oceanops/maritime-agent/internal/application"
	domain "github.com/oceanops/maritime-agent/internal/domain/analysis"
	"github.com/oceanops/maritime-agent/internal/domain/vessel"
	"github.com/oceanops/maritime-agent/internal/infra/ai/prompt"
)

// Analysis window around an event's timestamp. Fixed, not configurable.
const (
	windowBefore = 30 * time.Minute
	windowAfter  = 5 * time.Minute
)

// Archiver is an optional sink for computed analysis documents (object
// storage). Failures are logged and never fail the request.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Service implements the event-analysis use cases.
// Requests are independent; the service holds no mutable state and is safe
// for concurrent use.
type Service struct {
	Events    vessel.EventRepository
	Telemetry vessel.TelemetryRepository
	Analyses  domain.Repository
	Generator domain.Generator
	Archive   Archiver // nil disables archiving
	Clock     application.Clock
}

// Result is one analysis plus its presentation provenance. FromCache and
// CreatedAt only affect rendering, never the stored document.
type Result struct {
	Event     *vessel.Event
	Analysis  domain.Analysis
	CreatedAt time.Time
	FromCache bool
}

// Analyze runs the pipeline for one event: cache lookup, window stats,
// prompt, generation, tolerant parse, guardrail scoring, persist.
//
// A generation failure is recovered locally (confidence cap + note); store
// errors propagate and nothing partial is persisted.
func (s *Service) Analyze(ctx context.Context, eventID string, force bool) (*Result, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, domain.ErrInvalidEventID
	}

	evt, err := s.Events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if evt == nil {
		return nil, domain.ErrEventNotFound
	}

	if !force {
		cached, err := s.Analyses.LatestByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return &Result{Event: evt, Analysis: cached.Document, CreatedAt: cached.CreatedAt, FromCache: true}, nil
		}
	}

	windowStart := evt.Ts.Add(-windowBefore)
	windowEnd := evt.Ts.Add(windowAfter)
	stats, err := s.Telemetry.Stats(ctx, evt.VesselID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	genFailed := false
	raw, err := s.Generator.Generate(ctx, prompt.Build(evt, stats, windowStart, windowEnd))
	if err != nil {
		// Single shot, no retry: the failure is folded into the result.
		log.Printf("generation failed for event %s: %v", eventID, err)
		genFailed = true
		raw = ""
	}

	payload := domain.ParseModelOutput(raw)
	doc := domain.Compose(eventID, payload, stats, genFailed, FormatWindow(windowStart, windowEnd))

	rec := &domain.Record{
		ID:         uuid.New().String(),
		EventID:    eventID,
		VesselID:   evt.VesselID,
		CreatedAt:  s.Clock.Now().UTC(),
		Document:   doc,
		RAGSources: []string{},
	}
	if err := s.Analyses.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.archive(ctx, rec)

	return &Result{Event: evt, Analysis: doc, CreatedAt: rec.CreatedAt, FromCache: false}, nil
}

// LatestEvent returns the newest event, optionally scoped to one vessel.
// Nil means no events exist yet.
func (s *Service) LatestEvent(ctx context.Context, vesselID string) (*vessel.Event, error) {
	return s.Events.Latest(ctx, vesselID)
}

// RecentStats aggregates telemetry for the trailing N minutes of a vessel.
func (s *Service) RecentStats(ctx context.Context, vesselID string, minutes int) (vessel.StatsWindow, error) {
	if minutes <= 0 {
		minutes = 30
	}
	end := s.Clock.Now().UTC()
	start := end.Add(-time.Duration(minutes) * time.Minute)
	return s.Telemetry.Stats(ctx, vesselID, start, end)
}

// EventContext fetches an event together with its surrounding window stats.
func (s *Service) EventContext(ctx context.Context, eventID string) (*vessel.Event, vessel.StatsWindow, string, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, vessel.StatsWindow{}, "", domain.ErrInvalidEventID
	}
	evt, err := s.Events.Get(ctx, eventID)
	if err != nil {
		return nil, vessel.StatsWindow{}, "", err
	}
	if evt == nil {
		return nil, vessel.StatsWindow{}, "", domain.ErrEventNotFound
	}

	windowStart := evt.Ts.Add(-windowBefore)
	windowEnd := evt.Ts.Add(windowAfter)
	stats, err := s.Telemetry.Stats(ctx, evt.VesselID, windowStart, windowEnd)
	if err != nil {
		return nil, vessel.StatsWindow{}, "", err
	}
	return evt, stats, FormatWindow(windowStart, windowEnd), nil
}

func (s *Service) archive(ctx context.Context, rec *domain.Record) {
	if s.Archive == nil {
		return
	}
	body, err := json.Marshal(rec.Document)
	if err != nil {
		return
	}
	key := fmt.Sprintf("%s/%s/%s.json", rec.VesselID, rec.EventID, rec.ID)
	if err := s.Archive.Put(ctx, key, body); err != nil {
		log.Printf("analysis archive failed for %s: %v", key, err)
	}
}

// FormatWindow renders the evidence window string.
func FormatWindow(start, end time.Time) string {
	return start.UTC().Format(time.RFC3339Nano) + " to " + end.UTC().Format(time.RFC3339Nano)
}

// IsCallerError reports whether err is an input error the transport layer
// should map to a 4xx rather than a 5xx.
func IsCallerError(err error) bool {
	return errors.Is(err, domain.ErrInvalidEventID) || errors.Is(err, domain.ErrEventNotFound)
}
