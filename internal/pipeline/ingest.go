package pipeline

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospectly/leadgen-cli/internal/directory"
	"github.com/prospectly/leadgen-cli/internal/store"
)

// Ingestor runs the search → normalize → dedupe-insert batch.
type Ingestor struct {
	search directory.Searcher
	store  store.Store
}

// NewIngestor creates an Ingestor.
func NewIngestor(search directory.Searcher, st store.Store) *Ingestor {
	return &Ingestor{search: search, store: st}
}

// Run searches the directory and stores each new listing as a lead. A
// search failure aborts (nothing can proceed without the provider); from
// there on, every listing gets an individual outcome and the batch always
// completes. Listings already stored, in this batch or a previous one, are
// skipped, never duplicated.
func (i *Ingestor) Run(ctx context.Context, query, location string, maxResults int) (*IngestSummary, error) {
	listings, err := i.search.Search(ctx, query, location, maxResults)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: search")
	}

	summary := &IngestSummary{Found: len(listings)}
	log := zap.L().With(zap.String("query", query), zap.String("location", location))

	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "ingest: canceled")
		}

		lead := directory.Normalize(listing)
		if lead.PlaceID == "" {
			summary.Errors = append(summary.Errors, ItemError{
				Name: lead.Name,
				Err:  "listing has no place id",
			})
			continue
		}

		exists, err := i.store.ExistsByPlaceID(ctx, lead.PlaceID)
		if err != nil {
			// Storage unreachable is systemic, not per-item.
			return summary, eris.Wrap(err, "ingest: existence check")
		}
		if exists {
			summary.Skipped++
			log.Debug("ingest: skipped existing lead",
				zap.String("place_id", lead.PlaceID),
				zap.String("name", lead.Name),
			)
			continue
		}

		if _, err := i.store.InsertLead(ctx, &lead); err != nil {
			// The store stays the dedupe authority; a concurrent or
			// in-batch duplicate surfaces here as a skip.
			if errors.Is(err, store.ErrDuplicate) {
				summary.Skipped++
				continue
			}
			summary.Errors = append(summary.Errors, ItemError{
				PlaceID: lead.PlaceID,
				Name:    lead.Name,
				Err:     err.Error(),
			})
			log.Warn("ingest: insert failed",
				zap.String("place_id", lead.PlaceID),
				zap.String("name", lead.Name),
				zap.Error(err),
			)
			continue
		}

		summary.Saved++
		log.Info("ingest: saved lead",
			zap.String("place_id", lead.PlaceID),
			zap.String("name", lead.Name),
		)
	}

	log.Info("ingest: batch complete",
		zap.Int("found", summary.Found),
		zap.Int("saved", summary.Saved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}
