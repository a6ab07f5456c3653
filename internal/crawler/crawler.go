// Package crawler implements a bounded best-first deep crawl of a website.
//
// Starting from a single URL, the crawler follows links in order of keyword
// relevance, recording the URL, depth and title of every page it fetches.
// Traversal is bounded by a maximum depth and a maximum page count, and by
// default stays on the starting host.
package crawler

import (
	"bytes"
	"container/heap"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"deepcrawl/internal/cache"
	"deepcrawl/internal/results"
)

// Config holds configuration options for the crawler.
type Config struct {
	// UserAgent is the User-Agent header value sent with HTTP requests
	UserAgent string
	// Timeout specifies the maximum duration to wait for a single fetch
	Timeout time.Duration
	// MaxDepth defines how many link levels to follow from the starting URL
	MaxDepth int
	// MaxPages caps the total number of pages fetched in one run
	MaxPages int
	// IncludeExternal allows following links to hosts other than the start host
	IncludeExternal bool
	// Keywords bias traversal order toward URLs mentioning them
	Keywords []string
	// RequestDelay is the minimum time between requests to the same host
	RequestDelay time.Duration
	// MaxConcurrent limits the total number of in-flight HTTP requests
	MaxConcurrent int
}

// DefaultConfig returns a configuration with the stock crawl bounds and
// conservative rate limiting.
func DefaultConfig() *Config {
	return &Config{
		UserAgent:     "Mozilla/5.0 (compatible; deepcrawl/1.0)",
		Timeout:       10 * time.Second,
		MaxDepth:      2,
		MaxPages:      50,
		RequestDelay:  500 * time.Millisecond,
		MaxConcurrent: 5,
	}
}

// Crawler performs the crawl. Create one with New.
type Crawler struct {
	config *Config
	scorer *KeywordScorer
	client *http.Client
	logger *log.Logger
	store  *cache.Cache

	// lastRequestTime tracks the last request time per host for rate limiting
	lastRequestTime map[string]time.Time
	// requestSem limits concurrent requests
	requestSem chan struct{}
	mutex      sync.Mutex
}

// New creates a crawler with the given configuration. A nil config selects
// DefaultConfig. The cache may be nil, in which case no fetch records are
// persisted.
func New(config *Config, store *cache.Cache, logger *log.Logger) *Crawler {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Crawler{
		config:          config,
		scorer:          NewKeywordScorer(config.Keywords),
		client:          &http.Client{Timeout: config.Timeout},
		logger:          logger,
		store:           store,
		lastRequestTime: make(map[string]time.Time),
		requestSem:      make(chan struct{}, max(config.MaxConcurrent, 1)),
	}
}

// Crawl walks the site starting from startURL and returns one record per
// fetched page, in fetch order. Individual page failures are logged and
// skipped; only an invalid start URL or a context cancellation aborts the
// crawl.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]results.Result, error) {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", base.Scheme)
	}

	frontier := &frontier{}
	heap.Init(frontier)
	visited := make(map[string]bool)

	push := func(u *url.URL, depth int) {
		key := u.String()
		if visited[key] {
			return
		}
		visited[key] = true
		heap.Push(frontier, &candidate{
			url:   u,
			depth: depth,
			score: c.scorer.Score(key),
		})
	}
	push(base, 0)

	var records []results.Result
	for frontier.Len() > 0 && len(records) < c.config.MaxPages {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		cand := heap.Pop(frontier).(*candidate)
		pageURL := cand.url.String()

		doc, body, err := c.fetch(ctx, pageURL)
		if err != nil {
			c.logger.Warn("fetch failed", "url", pageURL, "err", err)
			continue
		}

		title := extractTitle(doc)
		records = append(records, results.Result{
			URL:   pageURL,
			Depth: cand.depth,
			Title: title,
		})
		c.logger.Info("crawled", "url", pageURL, "depth", cand.depth, "score", cand.score)

		c.remember(pageURL, title, body)

		if cand.depth >= c.config.MaxDepth {
			continue
		}
		for _, link := range extractLinks(doc, cand.url) {
			if !c.config.IncludeExternal && link.Host != base.Host {
				continue
			}
			push(link, cand.depth+1)
		}
	}

	return records, nil
}

// remember records the fetched page in the cache, logging when the content
// is unchanged since the previous crawl.
func (c *Crawler) remember(pageURL, title, body string) {
	if c.store == nil {
		return
	}

	checksum := fmt.Sprintf("%x", sha256.Sum256([]byte(body)))
	prev, err := c.store.Get(pageURL)
	if err != nil {
		c.logger.Warn("cache read failed", "url", pageURL, "err", err)
	} else if prev != nil && prev.Checksum == checksum {
		c.logger.Debug("page unchanged since last crawl", "url", pageURL, "fetched_at", prev.FetchedAt)
	}

	entry := &cache.Entry{
		URL:       pageURL,
		Checksum:  checksum,
		Title:     title,
		FetchedAt: time.Now().UTC(),
	}
	if err := c.store.Put(entry); err != nil {
		c.logger.Warn("cache write failed", "url", pageURL, "err", err)
	}
}

// waitForRateLimit enforces the per-host delay and the global concurrency
// limit. The returned release func must be called once the request is done.
func (c *Crawler) waitForRateLimit(host string) func() {
	c.requestSem <- struct{}{}

	c.mutex.Lock()
	if last, ok := c.lastRequestTime[host]; ok {
		elapsed := time.Since(last)
		if elapsed < c.config.RequestDelay {
			c.mutex.Unlock()
			time.Sleep(c.config.RequestDelay - elapsed)
			c.mutex.Lock()
		}
	}
	c.lastRequestTime[host] = time.Now()
	c.mutex.Unlock()

	return func() { <-c.requestSem }
}

// fetch retrieves a URL and returns the parsed document plus the raw HTML.
func (c *Crawler) fetch(ctx context.Context, rawURL string) (*html.Node, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}

	release := c.waitForRateLimit(parsed.Host)
	defer release()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return nil, "", fmt.Errorf("not HTML content: %s", contentType)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, string(bodyBytes), nil
}

// extractTitle extracts the title from an HTML node tree.
func extractTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := extractTitle(c); title != "" {
			return title
		}
	}

	return ""
}

// extractLinks collects all http(s) links from a document, resolved against
// baseURL and with fragments stripped.
func extractLinks(doc *html.Node, baseURL *url.URL) []*url.URL {
	var links []*url.URL

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}

				parsed, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				resolved := baseURL.ResolveReference(parsed)
				resolved.Fragment = ""
				if resolved.Scheme != "http" && resolved.Scheme != "https" {
					continue
				}
				links = append(links, resolved)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(doc)
	return links
}
