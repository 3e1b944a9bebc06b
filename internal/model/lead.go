package model

import "time"

// LeadStatus represents where a lead sits in the acquisition lifecycle.
type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusEnriched     LeadStatus = "enriched"
	LeadStatusValidated    LeadStatus = "validated"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusDisqualified LeadStatus = "disqualified"
)

// Lead is a prospective business sourced from the directory scrape.
// PlaceID is the provider's stable identifier and the dedupe key; at most
// one lead exists per PlaceID.
type Lead struct {
	ID           string     `json:"id"`
	PlaceID      string     `json:"place_id"`
	Name         string     `json:"name"`
	Address      string     `json:"address,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Website      string     `json:"website,omitempty"`
	Category     string     `json:"category,omitempty"`
	Rating       *float64   `json:"rating,omitempty"`
	ReviewsCount int        `json:"reviews_count"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Status       LeadStatus `json:"status"`
	Enriched     bool       `json:"enriched"`
	Validated    bool       `json:"validated"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
