package httpserver

import (
	"html/template"
	"io"
	"time"

	appanalysis "github.com/oceanops/maritime-agent/internal/application/analysis"
)

// Single-page analysis view. html/template escapes every free-text field
// (summary, causes, actions, notes, window).
var analysisPage = template.Must(template.New("analysis").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>AI Analysis - {{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f5f6f8; margin: 0; padding: 24px; color: #1f2933; }
    .card { background: #ffffff; border-radius: 12px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); padding: 20px; max-width: 900px; margin: 0 auto; }
    h1 { font-size: 20px; margin: 0 0 6px 0; }
    .meta { color: #52606d; font-size: 13px; margin-bottom: 12px; }
    .section { margin-top: 16px; }
    .label { font-weight: 600; margin-bottom: 6px; }
    ul { margin: 6px 0 0 20px; }
    .confidence { font-weight: 600; }
    .pill { display: inline-block; padding: 2px 8px; border-radius: 12px; background: #e1e8f0; font-size: 12px; margin-left: 8px; }
    .summary { background: #f0f4f8; padding: 12px; border-radius: 8px; }
    .notes { background: #fff7ed; padding: 10px; border-radius: 8px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>AI Analysis</h1>
    <div class="meta">{{.VesselID}} - {{.EventType}} - {{.Ts}}</div>
    <div class="meta">{{.SourceNote}} - Created at {{.CreatedAt}}</div>
    <div class="section">
      <div class="label">Summary <span class="pill confidence">Confidence: {{.Confidence}}</span></div>
      <div class="summary">{{.Summary}}</div>
    </div>
    <div class="section">
      <div class="label">Possible causes</div>
      <ul>{{range .Causes}}<li>{{.}}</li>{{else}}<li>None</li>{{end}}</ul>
    </div>
    <div class="section">
      <div class="label">Recommended actions</div>
      <ul>{{range .Actions}}<li>{{.}}</li>{{else}}<li>None</li>{{end}}</ul>
    </div>
    <div class="section">
      <div class="label">Data quality notes</div>
      <div class="notes">{{.Notes}}</div>
    </div>
    <div class="section">
      <div class="label">Context window</div>
      <div>{{.Window}}</div>
    </div>
  </div>
</body>
</html>
`))

type analysisView struct {
	Title      string
	VesselID   string
	EventType  string
	Ts         string
	SourceNote string
	CreatedAt  string
	Confidence int
	Summary    string
	Causes     []string
	Actions    []string
	Notes      string
	Window     string
}

// renderHTML writes the HTML view of one analysis result. The cache
// provenance line only affects this rendering, never the stored document.
func renderHTML(w io.Writer, res *appanalysis.Result) error {
	sourceNote := "New analysis"
	if res.FromCache {
		sourceNote = "Cached analysis"
	}

	view := analysisView{
		Title:      res.Event.EventType + " - " + res.Event.VesselID,
		VesselID:   res.Event.VesselID,
		EventType:  res.Event.EventType,
		Ts:         res.Event.Ts.UTC().Format(time.RFC3339Nano),
		SourceNote: sourceNote,
		CreatedAt:  res.CreatedAt.UTC().Format(time.RFC3339Nano),
		Confidence: res.Analysis.Confidence,
		Summary:    res.Analysis.Summary,
		Causes:     res.Analysis.PossibleCauses,
		Actions:    res.Analysis.RecommendedActions,
		Notes:      res.Analysis.DataQualityNotes,
		Window:     res.Analysis.Evidence.Window,
	}
	return analysisPage.Execute(w, view)
}
