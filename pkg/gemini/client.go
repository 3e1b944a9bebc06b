// Package gemini is a client for the Google Gemini generateContent REST
// API, used as one of the interchangeable text-generation providers.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/prospectly/leadgen-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-pro"
)

// Client performs single-turn content generation.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps request throughput for the shared provider limiter.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

// WithRetry overrides the default transient-error retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Gemini API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *httpClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", eris.Wrap(err, "gemini: marshal request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.generate(ctx, endpoint, body)
	})
}

func (c *httpClient) generate(ctx context.Context, endpoint string, body []byte) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "gemini: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "gemini: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "gemini: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "gemini: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("gemini: status %d: %s", resp.StatusCode, truncate(respBody, 512))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "gemini: unmarshal response")
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", eris.New("gemini: empty response")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
