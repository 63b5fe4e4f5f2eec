package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/oceanops/maritime-agent/internal/application/analysis"
	domain "github.com/oceanops/maritime-agent/internal/domain/analysis"
)

type Router struct {
	svc   *appanalysis.Service
	model string
}

// NewRouter mounts the agent's HTTP surface. analyzeMw (optional) wraps the
// model-invoking routes only; health and catalog routes stay cheap.
func NewRouter(svc *appanalysis.Service, model string, analyzeMw func(http.Handler) http.Handler) http.Handler {
	r := &Router{svc: svc, model: model}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "model": r.model})
	})

	mux.Get("/events/latest", r.wrap(r.handleLatestEvent))
	mux.Get("/mcp/tools", r.wrap(r.handleMCPTools))

	mux.Group(func(g chi.Router) {
		if analyzeMw != nil {
			g.Use(analyzeMw)
		}
		g.Post("/analyze", r.wrap(r.handleAnalyzePost))
		g.Get("/analyze", r.wrap(r.handleAnalyzeGet))
		g.Get("/analyze/latest", r.wrap(r.handleAnalyzeLatest))
		g.Post("/mcp/call", r.wrap(r.handleMCPCall))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, domain.ErrInvalidEventID) {
				writeJSON(w, http.StatusBadRequest, detail("Invalid event_id"))
				return
			}
			if errors.Is(err, domain.ErrEventNotFound) {
				writeJSON(w, http.StatusNotFound, detail("Event not found"))
				return
			}
			writeJSON(w, http.StatusInternalServerError, detail(err.Error()))
		}
	}
}

// POST /analyze
// Body: {"event_id": "<uuid>"}
func (r *Router) handleAnalyzePost(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Invalid request body"))
		return nil
	}

	res, err := r.svc.Analyze(req.Context(), body.EventID, false)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res.Analysis)
	return nil
}

// GET /analyze?event_id=&format=&force=
func (r *Router) handleAnalyzeGet(w http.ResponseWriter, req *http.Request) error {
	eventID := req.URL.Query().Get("event_id")
	force, _ := strconv.ParseBool(req.URL.Query().Get("force"))

	res, err := r.svc.Analyze(req.Context(), eventID, force)
	if err != nil {
		return err
	}

	if wantsHTML(req) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return renderHTML(w, res)
	}
	writeJSON(w, http.StatusOK, res.Analysis)
	return nil
}

// GET /analyze/latest?vessel_id=
func (r *Router) handleAnalyzeLatest(w http.ResponseWriter, req *http.Request) error {
	evt, err := r.svc.LatestEvent(req.Context(), req.URL.Query().Get("vessel_id"))
	if err != nil {
		return err
	}
	if evt == nil {
		writeJSON(w, http.StatusNotFound, detail("No events found"))
		return nil
	}

	res, err := r.svc.Analyze(req.Context(), evt.EventID, false)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res.Analysis)
	return nil
}

// GET /events/latest?vessel_id=
func (r *Router) handleLatestEvent(w http.ResponseWriter, req *http.Request) error {
	evt, err := r.svc.LatestEvent(req.Context(), req.URL.Query().Get("vessel_id"))
	if err != nil {
		return err
	}
	if evt == nil {
		writeJSON(w, http.StatusNotFound, detail("No events found"))
		return nil
	}
	writeJSON(w, http.StatusOK, evt)
	return nil
}

// GET /mcp/tools
func (r *Router) handleMCPTools(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]any{"tools": mcpToolCatalog()})
	return nil
}

// POST /mcp/call
// Body: {"tool": "...", "arguments": {...}}
func (r *Router) handleMCPCall(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Tool      string                     `json:"tool"`
		Arguments map[string]json.RawMessage `json:"arguments"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Invalid request body"))
		return nil
	}

	switch body.Tool {
	case "query_recent_metrics":
		return r.callQueryRecentMetrics(w, req, body.Arguments)
	case "get_event_context":
		return r.callGetEventContext(w, req, body.Arguments)
	case "explain_event":
		eventID, ok := stringArg(body.Arguments, "event_id")
		if !ok {
			writeJSON(w, http.StatusBadRequest, detail("event_id is required"))
			return nil
		}
		res, err := r.svc.Analyze(req.Context(), eventID, false)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, res.Analysis)
		return nil
	}

	writeJSON(w, http.StatusBadRequest, detail("Unknown tool"))
	return nil
}

func (r *Router) callQueryRecentMetrics(w http.ResponseWriter, req *http.Request, args map[string]json.RawMessage) error {
	vesselID, ok := stringArg(args, "vessel_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, detail("vessel_id is required"))
		return nil
	}
	minutes := 30
	if raw, ok := args["minutes"]; ok {
		var m int
		if err := json.Unmarshal(raw, &m); err == nil && m > 0 {
			minutes = m
		}
	}

	stats, err := r.svc.RecentStats(req.Context(), vesselID, minutes)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tool": "query_recent_metrics",
		"result": map[string]any{
			"window_minutes": minutes,
			"stats":          stats.ToMap(),
		},
	})
	return nil
}

func (r *Router) callGetEventContext(w http.ResponseWriter, req *http.Request, args map[string]json.RawMessage) error {
	eventID, ok := stringArg(args, "event_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, detail("event_id is required"))
		return nil
	}

	evt, stats, window, err := r.svc.EventContext(req.Context(), eventID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tool": "get_event_context",
		"result": map[string]any{
			"event":  evt,
			"window": window,
			"stats":  stats.ToMap(),
		},
	})
	return nil
}

func mcpToolCatalog() []map[string]any {
	return []map[string]any{
		{
			"name":        "query_recent_metrics",
			"description": "Get stats for recent telemetry for a vessel",
			"input_schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"vessel_id": map[string]any{"type": "string"},
					"minutes":   map[string]any{"type": "integer", "default": 30},
				},
				"required": []string{"vessel_id"},
			},
		},
		{
			"name":        "get_event_context",
			"description": "Fetch an event with surrounding telemetry stats",
			"input_schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event_id": map[string]any{"type": "string"},
				},
				"required": []string{"event_id"},
			},
		},
		{
			"name":        "explain_event",
			"description": "Generate an AI explanation for an event",
			"input_schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event_id": map[string]any{"type": "string"},
				},
				"required": []string{"event_id"},
			},
		},
	}
}

func stringArg(args map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func wantsHTML(req *http.Request) bool {
	if format := req.URL.Query().Get("format"); strings.EqualFold(format, "html") {
		return true
	}
	return strings.Contains(strings.ToLower(req.Header.Get("Accept")), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode error: %v", err)
	}
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}
