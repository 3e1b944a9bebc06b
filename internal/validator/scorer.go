// Package validator scores leads against an ideal-customer profile using a
// generative-text model and owns all resilience to malformed model output.
package validator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// TextModel is the single-turn generative-text capability the scorer
// consumes. Implementations wrap a concrete provider client.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Scorer builds analysis prompts and parses model verdicts.
type Scorer struct {
	model TextModel
}

// NewScorer creates a Scorer over the given text model.
func NewScorer(m TextModel) *Scorer {
	return &Scorer{model: m}
}

// Score analyzes one lead. It is total: provider failures and unparseable
// responses resolve to a terminal-fallback analysis (score 0, DISQUALIFY)
// instead of an error, so one bad response never aborts a batch.
func (s *Scorer) Score(ctx context.Context, lead model.Lead, websiteText string, criteria model.Criteria) *model.Analysis {
	prompt := buildPrompt(lead, websiteText, criteria)

	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		zap.L().Warn("validator: model call failed",
			zap.String("lead_id", lead.ID),
			zap.String("lead", lead.Name),
			zap.Error(err),
		)
		return fallbackAnalysis(lead.ID, "analysis failed: "+err.Error(), "")
	}

	analysis := parseAnalysis(raw)
	analysis.LeadID = lead.ID

	zap.L().Debug("validator: lead scored",
		zap.String("lead_id", lead.ID),
		zap.Float64("relevance_score", analysis.RelevanceScore),
		zap.String("recommendation", string(analysis.Recommendation)),
	)
	return analysis
}

// buildPrompt combines lead fields, truncated website text, and the target
// criteria into a single analysis request.
func buildPrompt(lead model.Lead, websiteText string, criteria model.Criteria) string {
	var b strings.Builder

	ourBusiness := criteria.OurBusiness
	if ourBusiness == "" {
		ourBusiness = "our company"
	}
	fmt.Fprintf(&b, "Analyze this business and determine if it is a good fit for %s's services.\n\n", ourBusiness)

	b.WriteString("Business Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "- Category: %s\n", lead.Category)
	fmt.Fprintf(&b, "- Address: %s\n", lead.Address)
	if lead.Rating != nil {
		fmt.Fprintf(&b, "- Rating: %.1f\n", *lead.Rating)
	}
	fmt.Fprintf(&b, "- Reviews: %d\n", lead.ReviewsCount)
	if websiteText != "" {
		fmt.Fprintf(&b, "- Website Content: %s\n", websiteText)
	}

	fmt.Fprintf(&b, "\nTarget Criteria:\n%s\n", criteria.Describe())

	b.WriteString(`
Respond with JSON only, in this shape:
{
  "business_description": "2-3 sentences",
  "services": ["service1", "service2"],
  "target_market": "...",
  "company_size": "small/medium/large",
  "relevance_score": 0-100,
  "recommendation": "QUALIFY/NURTURE/DISQUALIFY",
  "reasoning": "brief explanation"
}
`)
	return b.String()
}

// fallbackAnalysis is the terminal result when nothing could be extracted.
func fallbackAnalysis(leadID, reasoning, rawResponse string) *model.Analysis {
	return &model.Analysis{
		LeadID:         leadID,
		RelevanceScore: 0,
		Recommendation: model.RecommendDisqualify,
		Reasoning:      reasoning,
		RawResponse:    rawResponse,
	}
}
