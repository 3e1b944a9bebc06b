// Package directory queries the map-data provider for business listings
// and normalizes the raw records into leads.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospectly/leadgen-cli/pkg/apify"
)

// Searcher finds business listings for a query and location.
type Searcher interface {
	Search(ctx context.Context, query, location string, maxResults int) ([]apify.Listing, error)
}

// Client runs place searches through an Apify actor. The provider executes
// searches asynchronously, so Search submits a run and polls until it
// reaches a terminal state.
type Client struct {
	api          apify.Client
	actorID      string
	pollInterval time.Duration
	maxWait      time.Duration
}

// Config tunes the search run.
type Config struct {
	ActorID      string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// New creates a directory client over the given Apify client.
func New(api apify.Client, cfg Config) *Client {
	if cfg.ActorID == "" {
		cfg.ActorID = "compass/google-maps-extractor"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 10 * time.Minute
	}
	return &Client{
		api:          api,
		actorID:      cfg.ActorID,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
	}
}

// Search submits a place search and waits for results. A submission
// failure propagates (the provider is unreachable, nothing can proceed); a
// run that finishes FAILED/ABORTED/TIMED-OUT returns apify.ErrRunFailed.
// Zero matches is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query, location string, maxResults int) ([]apify.Listing, error) {
	input := apify.RunInput{
		SearchQueries:       []string{fmt.Sprintf("%s in %s", query, location)},
		MaxPlacesPerQuery:   maxResults,
		Language:            "en",
		ExportPlaceURLs:     true,
		IncludeWebResults:   true,
		IncludeOpeningHours: true,
		IncludeReviews:      false,
	}

	log := zap.L().With(zap.String("query", query), zap.String("location", location))

	run, err := c.api.StartRun(ctx, c.actorID, input)
	if err != nil {
		return nil, eris.Wrap(err, "directory: start search run")
	}
	log.Info("directory: search run started", zap.String("run_id", run.ID))

	run, err = c.awaitRun(ctx, run)
	if err != nil {
		return nil, err
	}

	items, err := c.api.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, eris.Wrap(err, "directory: fetch results")
	}

	log.Info("directory: search complete",
		zap.String("run_id", run.ID),
		zap.Int("listings", len(items)),
	)
	return items, nil
}

// awaitRun polls the run at a fixed interval until it reaches a terminal
// state or the wait budget runs out.
func (c *Client) awaitRun(ctx context.Context, run *apify.Run) (*apify.Run, error) {
	deadline := time.Now().Add(c.maxWait)

	for !run.Status.Terminal() {
		if time.Now().After(deadline) {
			return nil, eris.Errorf("directory: run %s still %s after %s", run.ID, run.Status, c.maxWait)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrap(ctx.Err(), "directory: poll canceled")
		case <-timer.C:
		}

		updated, err := c.api.GetRun(ctx, c.actorID, run.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "directory: poll run %s", run.ID)
		}
		run = updated
	}

	if run.Status != apify.RunStatusSucceeded {
		return nil, eris.Wrapf(apify.ErrRunFailed, "directory: run %s ended %s", run.ID, run.Status)
	}
	return run, nil
}
