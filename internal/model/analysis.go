package model

import (
	"strings"
	"time"
)

// Recommendation is the qualification verdict from the relevance analysis.
type Recommendation string

const (
	RecommendQualify    Recommendation = "QUALIFY"
	RecommendNurture    Recommendation = "NURTURE"
	RecommendDisqualify Recommendation = "DISQUALIFY"
)

// Analysis holds one relevance-scoring attempt for a lead. A lead
// accumulates analyses append-only; the latest one drives its status.
type Analysis struct {
	ID                  string         `json:"id"`
	LeadID              string         `json:"lead_id"`
	BusinessDescription string         `json:"business_description,omitempty"`
	Services            []string       `json:"services,omitempty"`
	TargetMarket        string         `json:"target_market,omitempty"`
	CompanySize         string         `json:"company_size,omitempty"`
	RelevanceScore      float64        `json:"relevance_score"`
	Recommendation      Recommendation `json:"recommendation"`
	Reasoning           string         `json:"reasoning,omitempty"`
	RawResponse         string         `json:"raw_response,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// NormalizeRecommendation maps a model-emitted verdict onto the canonical
// three-way vocabulary. The legacy two-way YES/NO form maps to
// QUALIFY/DISQUALIFY. Anything unrecognized is treated as DISQUALIFY.
func NormalizeRecommendation(raw string) Recommendation {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "QUALIFY", "YES":
		return RecommendQualify
	case "NURTURE", "MAYBE":
		return RecommendNurture
	case "DISQUALIFY", "NO":
		return RecommendDisqualify
	default:
		return RecommendDisqualify
	}
}

// ClampScore bounds a relevance score to [0, 100].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// StatusFor derives the lead status written after validation from a
// recommendation: QUALIFY promotes, NURTURE holds the lead in the enriched
// pool, DISQUALIFY drops it.
func StatusFor(rec Recommendation) LeadStatus {
	switch rec {
	case RecommendQualify:
		return LeadStatusQualified
	case RecommendNurture:
		return LeadStatusEnriched
	default:
		return LeadStatusDisqualified
	}
}
