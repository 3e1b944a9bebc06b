// Package pipeline coordinates lead ingestion and validation batches.
// Batches always run to completion: item-level failures are recorded in the
// summary, and only systemic failures (provider or storage unreachable)
// abort and propagate.
package pipeline

import "fmt"

// ItemError records a per-item failure inside a batch.
type ItemError struct {
	PlaceID string `json:"place_id,omitempty"`
	LeadID  string `json:"lead_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Err     string `json:"error"`
}

// IngestSummary reports the outcome of one ingestion batch.
type IngestSummary struct {
	Found   int         `json:"found"`
	Saved   int         `json:"saved"`
	Skipped int         `json:"skipped"`
	Errors  []ItemError `json:"errors,omitempty"`
}

func (s IngestSummary) String() string {
	return fmt.Sprintf("found %d, saved %d, skipped %d, errors %d",
		s.Found, s.Saved, s.Skipped, len(s.Errors))
}

// ValidateSummary reports the outcome of one validation batch.
type ValidateSummary struct {
	Processed    int         `json:"processed"`
	Qualified    int         `json:"qualified"`
	Nurture      int         `json:"nurture"`
	Disqualified int         `json:"disqualified"`
	Errors       []ItemError `json:"errors,omitempty"`
}

func (s ValidateSummary) String() string {
	return fmt.Sprintf("processed %d (qualified %d, nurture %d, disqualified %d), errors %d",
		s.Processed, s.Qualified, s.Nurture, s.Disqualified, len(s.Errors))
}
