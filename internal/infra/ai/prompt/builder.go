package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oceanops/maritime-agent/internal/domain/vessel"
)

// Build renders the deterministic instruction sent to the model for one
// event. The wording is a contract: the parser and scorer stay compatible
// with the keys and degradation rules named here, but the rules only bias
// the model and never guarantee compliant output.
func Build(evt *vessel.Event, stats vessel.StatsWindow, windowStart, windowEnd time.Time) string {
	statsJSON, err := json.MarshalIndent(stats.ToMap(), "", "  ")
	if err != nil {
		// Flat float map cannot fail to marshal; guard anyway.
		statsJSON = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("You are an assistant for maritime telemetry analysis. ")
	sb.WriteString("Use only the data provided below. Do not guess. ")
	sb.WriteString("Return JSON only with keys: summary, possible_causes, recommended_actions, confidence, data_quality_notes.\n\n")
	fmt.Fprintf(&sb, "Event: %s (severity %s)\n", evt.EventType, evt.Severity)
	fmt.Fprintf(&sb, "Description: %s\n", evt.Description)
	fmt.Fprintf(&sb, "Vessel: %s\n", evt.VesselID)
	fmt.Fprintf(&sb, "Timestamp: %s\n", evt.Ts.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&sb, "Data window: %s to %s\n", windowStart.UTC().Format(time.RFC3339Nano), windowEnd.UTC().Format(time.RFC3339Nano))
	sb.WriteString("\nStats:\n")
	sb.Write(statsJSON)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- If sample_count is 0, say data is missing and lower confidence.\n")
	sb.WriteString("- If avg_data_quality is below 0.6, mention low data quality and lower confidence.\n")
	sb.WriteString("- Keep possible_causes and recommended_actions short.\n")

	return sb.String()
}
