package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/oceanops/maritime-agent/internal/application/analysis"
	domain "github.com/oceanops/maritime-agent/internal/domain/analysis"
	"github.com/oceanops/maritime-agent/internal/domain/vessel"
)

const testEventID = "c2a7e3c4-5b1d-4c0e-9f1a-7d2b8e4f6a01"

type stubEvents struct {
	evt *vessel.Event
}

func (s *stubEvents) Get(_ context.Context, id string) (*vessel.Event, error) {
	if s.evt != nil && s.evt.EventID == id {
		return s.evt, nil
	}
	return nil, nil
}

func (s *stubEvents) Latest(_ context.Context, _ string) (*vessel.Event, error) {
	return s.evt, nil
}

func (s *stubEvents) Save(_ context.Context, _ *vessel.Event) error { return nil }

type stubTelemetry struct{ window vessel.StatsWindow }

func (s *stubTelemetry) Stats(_ context.Context, _ string, start, end time.Time) (vessel.StatsWindow, error) {
	w := s.window
	w.WindowStart, w.WindowEnd = start, end
	return w, nil
}

func (s *stubTelemetry) Save(_ context.Context, _ *vessel.Sample) error { return nil }

type stubAnalyses struct{ rows []*domain.Record }

func (s *stubAnalyses) Save(_ context.Context, rec *domain.Record) error {
	s.rows = append(s.rows, rec)
	return nil
}

func (s *stubAnalyses) LatestByEvent(_ context.Context, eventID string) (*domain.Record, error) {
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].EventID == eventID {
			return s.rows[i], nil
		}
	}
	return nil, nil
}

type stubGenerator struct{ response string }

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.response, nil
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC) }

func newTestHandler(evt *vessel.Event, modelResponse string) http.Handler {
	q := 0.95
	svc := &appanalysis.Service{
		Events:    &stubEvents{evt: evt},
		Telemetry: &stubTelemetry{window: vessel.StatsWindow{SampleCount: 50, AvgDataQuality: &q}},
		Analyses:  &stubAnalyses{},
		Generator: &stubGenerator{response: modelResponse},
		Clock:     stubClock{},
	}
	return NewRouter(svc, "llama3:8b", nil)
}

func testEvent() *vessel.Event {
	return &vessel.Event{
		EventID:     testEventID,
		Ts:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		VesselID:    "vessel_001",
		SensorID:    "engine_temp",
		Severity:    vessel.SeverityWarning,
		EventType:   "overtemp",
		Description: "Engine temperature spike detected.",
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"llama3:8b"`)
}

func TestAnalyzePostReturnsAnalysis(t *testing.T) {
	h := newTestHandler(testEvent(), `{"summary":"Normal","confidence":90}`)
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"event_id":"` + testEventID + `"}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var a domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "Normal", a.Summary)
	assert.Equal(t, 90, a.Confidence)
	assert.Equal(t, []string{"timescaledb.telemetry", "timescaledb.events"}, a.DataSources)
}

func TestAnalyzeGetInvalidID(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze?event_id=nope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid event_id")
}

func TestAnalyzeGetUnknownEvent(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze?event_id=11111111-2222-3333-4444-555555555555", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Event not found")
}

func TestAnalyzeGetHTMLView(t *testing.T) {
	h := newTestHandler(testEvent(), `{"summary":"<b>temp</b> spike","confidence":90}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze?event_id="+testEventID+"&format=html", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "New analysis")
	// free text is escaped
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;temp&lt;/b&gt; spike")
	assert.NotContains(t, rec.Body.String(), "<b>temp</b>")

	// second request is served from cache and says so
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze?event_id="+testEventID+"&format=html", nil))
	assert.Contains(t, rec.Body.String(), "Cached analysis")
}

func TestAnalyzeGetHonorsAcceptHeader(t *testing.T) {
	h := newTestHandler(testEvent(), `{"summary":"ok"}`)
	req := httptest.NewRequest(http.MethodGet, "/analyze?event_id="+testEventID, nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestEventsLatestEmpty(t *testing.T) {
	h := newTestHandler(nil, "{}")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No events found")
}

func TestMCPToolCatalog(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/tools", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	names := make([]string, 0, len(body.Tools))
	for _, tool := range body.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"query_recent_metrics", "get_event_context", "explain_event"}, names)
}

func TestMCPCallUnknownTool(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"tool":"teleport","arguments":{}}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/call", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown tool")
}

func TestMCPCallQueryRecentMetrics(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"tool":"query_recent_metrics","arguments":{"vessel_id":"vessel_001","minutes":15}}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/call", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"window_minutes":15`)
	assert.Contains(t, rec.Body.String(), `"sample_count":50`)

	// missing vessel_id is a caller error
	rec = httptest.NewRecorder()
	body = strings.NewReader(`{"tool":"query_recent_metrics","arguments":{}}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/call", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMCPCallGetEventContext(t *testing.T) {
	h := newTestHandler(testEvent(), "{}")
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"tool":"get_event_context","arguments":{"event_id":"` + testEventID + `"}}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/call", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"event_type":"overtemp"`)
	assert.Contains(t, rec.Body.String(), `"window":"2026-03-01T11:30:00Z to 2026-03-01T12:05:00Z"`)
}
