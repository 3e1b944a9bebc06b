// Package fetcher retrieves a business website as plain text for prompt
// construction. Website content is best-effort enrichment: every failure
// mode maps to an empty string, never an error.
package fetcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/k3a/html2text"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxChars = 2000
	maxBodyBytes    = 512 * 1024
)

// Fetcher fetches and strips website content.
type Fetcher struct {
	client   *http.Client
	maxChars int
	cache    *gocache.Cache
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMaxChars overrides the text truncation limit.
func WithMaxChars(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxChars = n
		}
	}
}

// WithCacheTTL overrides how long fetched text is kept in memory.
func WithCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		if ttl > 0 {
			f.cache = gocache.New(ttl, 2*ttl)
		}
	}
}

// New creates a Fetcher with a short timeout and an in-memory result cache,
// so re-validating leads on the same site within one process does not
// refetch.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		maxChars: defaultMaxChars,
		cache:    gocache.New(30*time.Minute, time.Hour),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetchText retrieves a URL and reduces it to bounded plain text. Timeouts,
// connection errors, non-2xx responses, and non-text content all yield "".
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	if cached, ok := f.cache.Get(rawURL); ok {
		return cached.(string)
	}

	text := f.fetch(ctx, rawURL)
	f.cache.SetDefault(rawURL, text)
	return text
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; LeadgenBot/1.0)")
	req.Header.Set("Accept", "text/html,text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("fetcher: request failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	ctype := resp.Header.Get("Content-Type")
	if ctype != "" && !strings.Contains(ctype, "text/html") && !strings.Contains(ctype, "text/plain") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}

	text := string(body)
	if strings.Contains(ctype, "text/html") || looksLikeHTML(text) {
		text = html2text.HTML2Text(text)
	}
	text = collapseWhitespace(text)

	if len(text) > f.maxChars {
		text = text[:f.maxChars]
	}
	return text
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
