package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelOutputEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		p := ParseModelOutput(text)
		assert.Nil(t, p.Summary)
		assert.Nil(t, p.PossibleCauses)
		assert.Nil(t, p.RecommendedActions)
		assert.Nil(t, p.Confidence)
		assert.Nil(t, p.DataQualityNotes)
	}
}

func TestParseModelOutputWellFormed(t *testing.T) {
	p := ParseModelOutput(`{
		"summary": "Engine temp spiked above normal range.",
		"possible_causes": ["cooling failure", "sensor drift"],
		"recommended_actions": ["inspect cooling loop"],
		"confidence": 85,
		"data_quality_notes": "Window fully sampled."
	}`)

	require.NotNil(t, p.Summary)
	assert.Equal(t, "Engine temp spiked above normal range.", *p.Summary)
	assert.Equal(t, []string{"cooling failure", "sensor drift"}, p.PossibleCauses)
	assert.Equal(t, []string{"inspect cooling loop"}, p.RecommendedActions)
	require.NotNil(t, p.Confidence)
	assert.Equal(t, 85, *p.Confidence)
	require.NotNil(t, p.DataQualityNotes)
	assert.Equal(t, "Window fully sampled.", *p.DataQualityNotes)
}

func TestParseModelOutputEmbeddedObject(t *testing.T) {
	p := ParseModelOutput(`Here is the result: {"summary":"ok","confidence":80} trailing`)

	require.NotNil(t, p.Summary)
	assert.Equal(t, "ok", *p.Summary)
	require.NotNil(t, p.Confidence)
	assert.Equal(t, 80, *p.Confidence)
}

func TestParseModelOutputProseFallback(t *testing.T) {
	p := ParseModelOutput("engine looks fine")

	require.NotNil(t, p.Summary)
	assert.Equal(t, "engine looks fine", *p.Summary)
	assert.Empty(t, p.PossibleCauses)
	assert.Empty(t, p.RecommendedActions)
	assert.Nil(t, p.Confidence)
	assert.Nil(t, p.DataQualityNotes)
}

func TestParseModelOutputUnbalancedBracesFallsBackToSummary(t *testing.T) {
	text := "model said { something incomplete"
	p := ParseModelOutput(text)

	require.NotNil(t, p.Summary)
	assert.Equal(t, text, *p.Summary)
}

func TestParseModelOutputConfidenceTypes(t *testing.T) {
	cases := []struct {
		name string
		text string
		want *int
	}{
		{"integer", `{"confidence": 70}`, intp(70)},
		{"float discarded", `{"confidence": 70.5}`, nil},
		{"string discarded", `{"confidence": "70"}`, nil},
		{"bool discarded", `{"confidence": true}`, nil},
		{"null discarded", `{"confidence": null}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ParseModelOutput(tc.text)
			if tc.want == nil {
				assert.Nil(t, p.Confidence)
				return
			}
			require.NotNil(t, p.Confidence)
			assert.Equal(t, *tc.want, *p.Confidence)
		})
	}
}

func TestParseModelOutputListShapes(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"array filters blanks and non-strings", `{"possible_causes": ["a", "", 3, "  ", "b", null]}`, []string{"a", "b"}},
		{"single string wrapped", `{"possible_causes": "pump wear"}`, []string{"pump wear"}},
		{"blank string dropped", `{"possible_causes": "  "}`, nil},
		{"object shape dropped", `{"possible_causes": {"x": 1}}`, nil},
		{"number shape dropped", `{"possible_causes": 12}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ParseModelOutput(tc.text)
			if tc.want == nil {
				assert.Empty(t, p.PossibleCauses)
				return
			}
			assert.Equal(t, tc.want, p.PossibleCauses)
		})
	}
}

func TestParseModelOutputNonStringSummaryIgnored(t *testing.T) {
	p := ParseModelOutput(`{"summary": 42, "data_quality_notes": ["not a string"]}`)
	assert.Nil(t, p.Summary)
	assert.Nil(t, p.DataQualityNotes)
}

func TestParseModelOutputNonObjectJSON(t *testing.T) {
	// A top-level array still yields its first embedded object via slicing.
	p := ParseModelOutput(`[{"summary":"from array"}]`)
	require.NotNil(t, p.Summary)
	assert.Equal(t, "from array", *p.Summary)

	// A bare JSON string has no braces, so it becomes the summary verbatim.
	p = ParseModelOutput(`"just a string"`)
	require.NotNil(t, p.Summary)
	assert.Equal(t, `"just a string"`, *p.Summary)
}

func TestParseModelOutputIgnoresUnknownKeys(t *testing.T) {
	p := ParseModelOutput(`{"summary":"ok","verdict":"guilty","score":99}`)
	require.NotNil(t, p.Summary)
	assert.Equal(t, "ok", *p.Summary)
	assert.Nil(t, p.Confidence)
}

func intp(v int) *int { return &v }
