package analysis

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Payload is the best-effort extraction from raw model output. All fields
// are optional; a nil field means the model did not provide it, which is
// distinct from an empty value.
type Payload struct {
	Summary            *string
	PossibleCauses     []string
	RecommendedActions []string
	Confidence         *int
	DataQualityNotes   *string
}

// ParseModelOutput extracts a Payload from whatever the model returned. It
// never fails: malformed input degrades to a summary-only or empty payload.
//
// Order of attempts, first success wins:
//  1. empty/whitespace input -> empty payload
//  2. the whole trimmed text as a JSON object
//  3. the substring from the first '{' to the last '}' as a JSON object
//  4. the whole trimmed text as the summary
func ParseModelOutput(text string) Payload {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Payload{}
	}

	if obj, ok := decodeObject(trimmed); ok {
		return extractPayload(obj)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if obj, ok := decodeObject(trimmed[start : end+1]); ok {
			return extractPayload(obj)
		}
	}

	// Last resort: keep the model's prose instead of dropping it.
	return Payload{Summary: &trimmed}
}

// decodeObject parses text as a single JSON object. UseNumber keeps the
// distinction between integer and fractional numbers for the confidence
// rule below.
func decodeObject(text string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// Reject trailing garbage so step 3 gets a chance at the embedded object.
	var rest any
	if err := dec.Decode(&rest); err != io.EOF {
		return nil, false
	}

	obj, ok := v.(map[string]any)
	return obj, ok
}

// extractPayload pattern-matches the recognized keys and discards anything
// with the wrong shape. Unknown keys are ignored.
func extractPayload(obj map[string]any) Payload {
	var p Payload

	if s, ok := obj["summary"].(string); ok {
		p.Summary = &s
	}
	p.PossibleCauses = extractStringList(obj["possible_causes"])
	p.RecommendedActions = extractStringList(obj["recommended_actions"])
	if n, ok := obj["confidence"].(json.Number); ok {
		// Integer-typed only; floats, strings and bools are discarded.
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			c := int(i)
			p.Confidence = &c
		}
	}
	if s, ok := obj["data_quality_notes"].(string); ok {
		p.DataQualityNotes = &s
	}

	return p
}

// extractStringList accepts an array of strings (non-string and blank
// entries dropped, order preserved) or a single non-blank string. Any other
// shape yields nothing.
func extractStringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}
