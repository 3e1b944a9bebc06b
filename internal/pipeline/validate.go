package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prospectly/leadgen-cli/internal/model"
	"github.com/prospectly/leadgen-cli/internal/store"
)

// TextFetcher retrieves website text, best-effort.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) string
}

// LeadScorer produces an analysis for a lead. Implementations are total:
// they return a terminal-fallback analysis rather than an error.
type LeadScorer interface {
	Score(ctx context.Context, lead model.Lead, websiteText string, criteria model.Criteria) *model.Analysis
}

// Validator runs the fetch → score → persist batch over unvalidated leads.
type Validator struct {
	store   store.Store
	fetcher TextFetcher
	scorer  LeadScorer

	// Concurrency bounds how many leads are validated at once. The store's
	// unique constraint keeps inserts safe; external calls are already
	// rate-limited per provider. Defaults to sequential.
	Concurrency int
}

// NewValidator creates a Validator.
func NewValidator(st store.Store, fetcher TextFetcher, scorer LeadScorer) *Validator {
	return &Validator{store: st, fetcher: fetcher, scorer: scorer, Concurrency: 1}
}

// Run draws up to limit unvalidated leads (oldest first) and validates each
// one. Per-lead persistence failures are recorded and do not block the
// rest of the batch.
func (v *Validator) Run(ctx context.Context, limit int, criteria model.Criteria) (*ValidateSummary, error) {
	leads, err := v.store.ListUnvalidated(ctx, limit)
	if err != nil {
		return nil, eris.Wrap(err, "validate: list unvalidated")
	}

	summary := &ValidateSummary{}
	if len(leads) == 0 {
		zap.L().Info("validate: no unvalidated leads")
		return summary, nil
	}

	concurrency := v.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			rec, itemErr := v.validateOne(gctx, lead, criteria)

			mu.Lock()
			defer mu.Unlock()
			if itemErr != nil {
				summary.Errors = append(summary.Errors, *itemErr)
				return nil
			}
			summary.Processed++
			switch rec {
			case model.RecommendQualify:
				summary.Qualified++
			case model.RecommendNurture:
				summary.Nurture++
			default:
				summary.Disqualified++
			}
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("validate: batch complete",
		zap.Int("processed", summary.Processed),
		zap.Int("qualified", summary.Qualified),
		zap.Int("nurture", summary.Nurture),
		zap.Int("disqualified", summary.Disqualified),
		zap.Int("errors", len(summary.Errors)),
	)

	if err := ctx.Err(); err != nil {
		return summary, eris.Wrap(err, "validate: canceled")
	}
	return summary, nil
}

// validateOne fetches, scores, and persists a single lead. The fetch and
// the scoring never fail; only persistence can produce an item error.
func (v *Validator) validateOne(ctx context.Context, lead model.Lead, criteria model.Criteria) (model.Recommendation, *ItemError) {
	log := zap.L().With(zap.String("lead_id", lead.ID), zap.String("name", lead.Name))

	websiteText := v.fetcher.FetchText(ctx, lead.Website)
	analysis := v.scorer.Score(ctx, lead, websiteText, criteria)
	analysis.LeadID = lead.ID

	if _, err := v.store.InsertAnalysis(ctx, analysis); err != nil {
		log.Warn("validate: persist analysis failed", zap.Error(err))
		return "", &ItemError{LeadID: lead.ID, PlaceID: lead.PlaceID, Name: lead.Name, Err: err.Error()}
	}

	validated := true
	status := model.StatusFor(analysis.Recommendation)
	if err := v.store.UpdateLeadStatus(ctx, lead.ID, status, nil, &validated); err != nil {
		log.Warn("validate: status update failed", zap.Error(err))
		return "", &ItemError{LeadID: lead.ID, PlaceID: lead.PlaceID, Name: lead.Name, Err: err.Error()}
	}

	log.Info("validate: lead validated",
		zap.Float64("score", analysis.RelevanceScore),
		zap.String("recommendation", string(analysis.Recommendation)),
		zap.String("status", string(status)),
	)
	return analysis.Recommendation, nil
}
