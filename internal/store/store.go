package store

import (
	"context"
	"errors"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// ErrDuplicate is returned by InsertLead when a lead with the same place id
// already exists. The unique constraint on place_id makes the store the
// final authority on dedupe; it never silently upserts.
var ErrDuplicate = errors.New("store: duplicate place id")

// ErrNotFound is returned when an operation targets a missing lead.
var ErrNotFound = errors.New("store: lead not found")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status    model.LeadStatus `json:"status,omitempty"`
	Validated *bool            `json:"validated,omitempty"`
	Limit     int              `json:"limit,omitempty"`
	Offset    int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Leads
	ExistsByPlaceID(ctx context.Context, placeID string) (bool, error)
	InsertLead(ctx context.Context, lead *model.Lead) (string, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	ListUnvalidated(ctx context.Context, limit int) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, enriched, validated *bool) error
	DeleteLead(ctx context.Context, id string) error

	// Analyses
	InsertAnalysis(ctx context.Context, analysis *model.Analysis) (string, error)
	ListAnalyses(ctx context.Context, leadID string) ([]model.Analysis, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
