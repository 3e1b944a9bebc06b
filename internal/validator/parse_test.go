package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectly/leadgen-cli/internal/model"
)

func TestParseAnalysis_CleanJSON(t *testing.T) {
	raw := `{
		"business_description": "Residential plumbing contractor.",
		"services": ["repairs", "remodels"],
		"target_market": "homeowners",
		"company_size": "small",
		"relevance_score": 87,
		"recommendation": "QUALIFY",
		"reasoning": "Matches target profile."
	}`

	a := parseAnalysis(raw)
	assert.Equal(t, "Residential plumbing contractor.", a.BusinessDescription)
	assert.Equal(t, []string{"repairs", "remodels"}, a.Services)
	assert.Equal(t, 87.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendQualify, a.Recommendation)
	assert.Empty(t, a.RawResponse)
}

func TestParseAnalysis_FencedBlock(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"relevance_score\": 55, \"recommendation\": \"NURTURE\"}\n```\nLet me know if you need more."

	a := parseAnalysis(raw)
	assert.Equal(t, 55.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendNurture, a.Recommendation)
}

func TestParseAnalysis_BracedSubstring(t *testing.T) {
	raw := `Sure! {"relevance_score": 20, "recommendation": "DISQUALIFY", "reasoning": "No fit"} Hope that helps.`

	a := parseAnalysis(raw)
	assert.Equal(t, 20.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Equal(t, "No fit", a.Reasoning)
}

func TestParseAnalysis_KeyValueLines(t *testing.T) {
	raw := "Based on my review:\n\nRelevance Score: 72%\nRecommendation: QUALIFY\nReasoning: solid local presence"

	a := parseAnalysis(raw)
	assert.Equal(t, 72.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendQualify, a.Recommendation)
	assert.Equal(t, "solid local presence", a.Reasoning)
	// Key-value extraction keeps the raw text for audit.
	assert.Equal(t, raw, a.RawResponse)
}

func TestParseAnalysis_TotallyUnparseable(t *testing.T) {
	raw := "I cannot analyze this business."

	a := parseAnalysis(raw)
	assert.Equal(t, 0.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Equal(t, "unparseable model response", a.Reasoning)
	assert.Equal(t, raw, a.RawResponse)
}

func TestParseAnalysis_Empty(t *testing.T) {
	a := parseAnalysis("")
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Equal(t, 0.0, a.RelevanceScore)
}

func TestParseAnalysis_ClampsScore(t *testing.T) {
	a := parseAnalysis(`{"relevance_score": 850, "recommendation": "QUALIFY"}`)
	assert.Equal(t, 100.0, a.RelevanceScore)

	a = parseAnalysis(`{"relevance_score": -3, "recommendation": "DISQUALIFY"}`)
	assert.Equal(t, 0.0, a.RelevanceScore)
}

func TestParseAnalysis_LegacyVocabulary(t *testing.T) {
	a := parseAnalysis(`{"description": "Old style", "score": "64", "recommendation": "YES", "potential_needs": "new website"}`)
	assert.Equal(t, "Old style", a.BusinessDescription)
	assert.Equal(t, 64.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendQualify, a.Recommendation)
	assert.Equal(t, []string{"new website"}, a.Services)

	a = parseAnalysis(`{"score": 10, "recommendation": "NO"}`)
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
}

func TestParseAnalysis_UnknownRecommendation(t *testing.T) {
	a := parseAnalysis(`{"relevance_score": 90, "recommendation": "STRONG BUY"}`)
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Equal(t, 90.0, a.RelevanceScore)
}

func TestParseAnalysis_JSONWithoutVerdictKeys(t *testing.T) {
	// A JSON object that is not a verdict falls through; the key-value pass
	// cannot help either, so the terminal fallback applies.
	a := parseAnalysis(`{"error": 404}`)
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Equal(t, "unparseable model response", a.Reasoning)
}

func TestDecodeVerdict_ScoreAsString(t *testing.T) {
	v, ok := decodeVerdict(`{"relevance_score": "42%", "recommendation": "NURTURE"}`)
	require.True(t, ok)
	assert.Equal(t, 42.0, v.RelevanceScore)
	assert.True(t, v.ScoreSeen)
}
