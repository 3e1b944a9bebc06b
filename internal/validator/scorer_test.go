package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// stubModel returns a canned response or error.
type stubModel struct {
	response   string
	err        error
	lastPrompt string
}

func (m *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.response, m.err
}

func testCriteria() model.Criteria {
	return model.Criteria{
		OurBusiness: "Acme Web Studio",
		Description: "Local service businesses needing a website refresh.",
		Industries:  []string{"plumbing"},
		MinRating:   4.0,
	}
}

func scoredLead() model.Lead {
	rating := 4.6
	return model.Lead{
		ID:           "lead-1",
		Name:         "Joe's Plumbing",
		Category:     "Plumber",
		Address:      "1 Main St",
		Rating:       &rating,
		ReviewsCount: 31,
	}
}

func TestScore_ParsesVerdict(t *testing.T) {
	m := &stubModel{response: `{"relevance_score": 88, "recommendation": "QUALIFY", "reasoning": "fits"}`}
	s := NewScorer(m)

	a := s.Score(context.Background(), scoredLead(), "we fix pipes", testCriteria())
	require.NotNil(t, a)
	assert.Equal(t, "lead-1", a.LeadID)
	assert.Equal(t, 88.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendQualify, a.Recommendation)
}

func TestScore_ModelErrorFallsBack(t *testing.T) {
	m := &stubModel{err: errors.New("rate limited")}
	s := NewScorer(m)

	a := s.Score(context.Background(), scoredLead(), "", testCriteria())
	require.NotNil(t, a)
	assert.Equal(t, "lead-1", a.LeadID)
	assert.Equal(t, 0.0, a.RelevanceScore)
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Contains(t, a.Reasoning, "analysis failed")
	assert.Contains(t, a.Reasoning, "rate limited")
}

func TestScore_UnparseableResponseFallsBack(t *testing.T) {
	m := &stubModel{response: "As an AI, I would rather not."}
	s := NewScorer(m)

	a := s.Score(context.Background(), scoredLead(), "", testCriteria())
	assert.Equal(t, model.RecommendDisqualify, a.Recommendation)
	assert.Equal(t, "As an AI, I would rather not.", a.RawResponse)
}

func TestBuildPrompt_Contents(t *testing.T) {
	m := &stubModel{response: `{"recommendation": "NURTURE"}`}
	s := NewScorer(m)

	s.Score(context.Background(), scoredLead(), "Emergency repairs since 1998.", testCriteria())

	prompt := m.lastPrompt
	assert.Contains(t, prompt, "Acme Web Studio")
	assert.Contains(t, prompt, "Joe's Plumbing")
	assert.Contains(t, prompt, "Rating: 4.6")
	assert.Contains(t, prompt, "Emergency repairs since 1998.")
	assert.Contains(t, prompt, "Local service businesses needing a website refresh.")
	assert.Contains(t, prompt, "QUALIFY/NURTURE/DISQUALIFY")
}

func TestBuildPrompt_OmitsEmptyWebsite(t *testing.T) {
	m := &stubModel{response: `{"recommendation": "NURTURE"}`}
	s := NewScorer(m)

	s.Score(context.Background(), scoredLead(), "", testCriteria())
	assert.NotContains(t, m.lastPrompt, "Website Content")
}
