package validator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// parseAnalysis turns a model response into an Analysis. Strategies are
// tried in order until one yields a verdict:
//
//  1. the whole response as JSON
//  2. a fenced code block
//  3. the first brace-delimited substring
//  4. line-by-line "key: value" extraction
//  5. terminal fallback preserving the raw text
//
// It never fails; the worst outcome is the fallback analysis.
func parseAnalysis(raw string) *model.Analysis {
	trimmed := strings.TrimSpace(raw)

	if v, ok := decodeVerdict(trimmed); ok {
		return v.toAnalysis("")
	}
	if block := extractFencedBlock(trimmed); block != "" {
		if v, ok := decodeVerdict(block); ok {
			return v.toAnalysis("")
		}
	}
	if braced := extractBraced(trimmed); braced != "" {
		if v, ok := decodeVerdict(braced); ok {
			return v.toAnalysis("")
		}
	}
	if v, ok := extractKeyValues(trimmed); ok {
		return v.toAnalysis(raw)
	}

	return fallbackAnalysis("", "unparseable model response", raw)
}

// verdict is the loosely-typed shape models actually return; both the
// legacy and the current key vocabularies are accepted.
type verdict struct {
	BusinessDescription string
	Services            []string
	TargetMarket        string
	CompanySize         string
	RelevanceScore      float64
	ScoreSeen           bool
	Recommendation      string
	Reasoning           string
}

func (v *verdict) toAnalysis(rawResponse string) *model.Analysis {
	return &model.Analysis{
		BusinessDescription: v.BusinessDescription,
		Services:            v.Services,
		TargetMarket:        v.TargetMarket,
		CompanySize:         v.CompanySize,
		RelevanceScore:      model.ClampScore(v.RelevanceScore),
		Recommendation:      model.NormalizeRecommendation(v.Recommendation),
		Reasoning:           v.Reasoning,
		RawResponse:         rawResponse,
	}
}

// decodeVerdict parses a JSON object into a verdict, tolerating numeric
// scores encoded as strings and services as either a list or one string.
func decodeVerdict(s string) (*verdict, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}

	v := &verdict{
		BusinessDescription: stringField(fields, "business_description", "description"),
		TargetMarket:        stringField(fields, "target_market"),
		CompanySize:         stringField(fields, "company_size", "estimated_company_size"),
		Recommendation:      stringField(fields, "recommendation"),
		Reasoning:           stringField(fields, "reasoning"),
	}
	v.RelevanceScore, v.ScoreSeen = numberField(fields, "relevance_score", "score")
	v.Services = listField(fields, "services", "potential_needs")

	// A JSON object with none of the verdict keys is not a verdict.
	if !v.ScoreSeen && v.Recommendation == "" && v.BusinessDescription == "" && v.Reasoning == "" {
		return nil, false
	}
	return v, true
}

var fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

func extractFencedBlock(s string) string {
	m := fencedRe.FindStringSubmatch(s)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractBraced returns the outermost brace-delimited substring.
func extractBraced(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// extractKeyValues scavenges "key: value" lines from free text. Succeeds
// only when at least one known verdict key is present.
func extractKeyValues(s string) (*verdict, bool) {
	v := &verdict{}
	found := false

	for _, line := range strings.Split(s, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.Trim(key, " \t*-\"'`"))
		value = strings.Trim(value, " \t,\"'`")

		switch key {
		case "relevance_score", "relevance score", "score":
			if n, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
				v.RelevanceScore = n
				v.ScoreSeen = true
				found = true
			}
		case "recommendation":
			v.Recommendation = value
			found = true
		case "reasoning":
			v.Reasoning = value
			found = true
		case "business_description", "business description", "description":
			v.BusinessDescription = value
			found = true
		case "target_market", "target market":
			v.TargetMarket = value
			found = true
		case "company_size", "company size":
			v.CompanySize = value
			found = true
		}
	}

	return v, found
}

// loose field accessors over map[string]any

func stringField(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if raw, ok := fields[k]; ok {
			if s, ok := raw.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func numberField(fields map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		switch n := raw.(type) {
		case float64:
			return n, true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func listField(fields map[string]any, keys ...string) []string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		switch items := raw.(type) {
		case []any:
			var out []string
			for _, item := range items {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if items != "" {
				return []string{items}
			}
		}
	}
	return nil
}
