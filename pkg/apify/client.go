// Package apify is a minimal client for the Apify actor API, covering the
// run-submit / status-poll / dataset-fetch cycle used by the Google Maps
// place extractor.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.apify.com/v2"

// ErrRunFailed signals that an actor run reached a terminal non-success
// state (FAILED, ABORTED, TIMED-OUT).
var ErrRunFailed = errors.New("apify: run failed")

// RunStatus is the provider-side state of an actor run.
type RunStatus string

const (
	RunStatusReady     RunStatus = "READY"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusAborted   RunStatus = "ABORTED"
	RunStatusTimedOut  RunStatus = "TIMED-OUT"
)

// Terminal reports whether the run has finished, successfully or not.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusAborted, RunStatusTimedOut:
		return true
	default:
		return false
	}
}

// Run is an actor run handle.
type Run struct {
	ID               string    `json:"id"`
	Status           RunStatus `json:"status"`
	DefaultDatasetID string    `json:"defaultDatasetId"`
}

// RunInput is the input document for the Google Maps extractor actor.
type RunInput struct {
	SearchQueries       []string `json:"searchQueries"`
	MaxPlacesPerQuery   int      `json:"maxPlacesPerQuery"`
	Language            string   `json:"language,omitempty"`
	ExportPlaceURLs     bool     `json:"exportPlaceUrls"`
	IncludeWebResults   bool     `json:"includeWebResults"`
	IncludeOpeningHours bool     `json:"includeOpeningHours"`
	IncludeReviews      bool     `json:"includeReviews"`
}

// Listing is a raw place record from the extractor's dataset.
type Listing struct {
	Name         string    `json:"title"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Website      string    `json:"website"`
	Categories   []string  `json:"categories"`
	Rating       *float64  `json:"totalScore"`
	ReviewsCount int       `json:"reviewsCount"`
	Location     *GeoPoint `json:"location"`
	PlaceID      string    `json:"placeId"`
	URL          string    `json:"url"`
}

// GeoPoint is a lat/lng pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client performs Apify actor API operations.
type Client interface {
	StartRun(ctx context.Context, actorID string, input RunInput) (*Run, error)
	GetRun(ctx context.Context, actorID, runID string) (*Run, error)
	DatasetItems(ctx context.Context, datasetID string) ([]Listing, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps request throughput. One client instance is shared
// process-wide so the limit applies per provider, not per batch.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Apify API client authenticated by token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the {"data": ...} wrapper Apify puts around run objects.
type envelope struct {
	Data Run `json:"data"`
}

func (c *httpClient) StartRun(ctx context.Context, actorID string, input RunInput) (*Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal input")
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs?token=%s", c.baseURL, url.PathEscape(actorID), url.QueryEscape(c.token))
	respBody, status, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, eris.Errorf("apify: start run status %d: %s", status, truncateBody(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal run")
	}
	return &env.Data, nil
}

func (c *httpClient) GetRun(ctx context.Context, actorID, runID string) (*Run, error) {
	endpoint := fmt.Sprintf("%s/acts/%s/runs/%s?token=%s", c.baseURL, url.PathEscape(actorID), url.PathEscape(runID), url.QueryEscape(c.token))
	respBody, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("apify: get run status %d: %s", status, truncateBody(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal run")
	}
	return &env.Data, nil
}

func (c *httpClient) DatasetItems(ctx context.Context, datasetID string) ([]Listing, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s", c.baseURL, url.PathEscape(datasetID), url.QueryEscape(c.token))
	respBody, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("apify: dataset items status %d: %s", status, truncateBody(respBody))
	}

	var items []Listing
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal dataset items")
	}
	return items, nil
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, eris.Wrap(err, "apify: rate limit wait")
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, eris.Wrap(err, "apify: create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "apify: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "apify: read response")
	}
	return respBody, resp.StatusCode, nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
