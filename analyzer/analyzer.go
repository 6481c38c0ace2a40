package analyzer

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/seo-optimizer/contentscore/scoring"
	"github.com/seo-optimizer/contentscore/stats"
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs
	ErrInvalidURL = errors.New("invalid url")
	// ErrFetch wraps every failure to download or parse the page
	ErrFetch = errors.New("failed to fetch page")
)

// maxPageSize caps how much of a response body is read
const maxPageSize = 10 << 20

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Scorer evaluates a form snapshot
type Scorer interface {
	Evaluate(values scoring.FormFieldValues) scoring.Result
}

type cacheEntry struct {
	page      Page
	timestamp time.Time
}

// Analyzer imports published pages into form snapshots and scores them.
// Fetched pages are cached by URL; scoring runs on every call since the
// keywords may differ.
type Analyzer struct {
	client          *http.Client
	scorer          Scorer
	stats           *stats.Storage
	log             *slog.Logger
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	cleanupInterval time.Duration
	hits, misses    int
	done            chan struct{}
	closeOnce       sync.Once
	now             func() time.Time
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(a *Analyzer) {
		a.client = c
	}
}

// WithCacheTTL sets how long a fetched page is reused
func WithCacheTTL(ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cacheTTL = ttl
	}
}

// WithMaxCacheSize caps the number of cached pages
func WithMaxCacheSize(n int) Option {
	return func(a *Analyzer) {
		a.maxCacheSize = n
	}
}

// WithStats records cache hits and misses in monthly statistics
func WithStats(s *stats.Storage) Option {
	return func(a *Analyzer) {
		a.stats = s
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.log = l
	}
}

// New creates an Analyzer and starts its cache cleanup loop. Call Shutdown
// to stop it.
func New(scorer Scorer, timeout time.Duration, opts ...Option) *Analyzer {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	a := &Analyzer{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		scorer:          scorer,
		log:             slog.Default(),
		cache:           make(map[string]cacheEntry),
		cacheTTL:        30 * time.Minute,
		maxCacheSize:    1000,
		cleanupInterval: 5 * time.Minute,
		done:            make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	go a.periodicCleanup()
	return a
}

func (a *Analyzer) periodicCleanup() {
	ticker := time.NewTicker(a.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.cleanup()
		case <-a.done:
			return
		}
	}
}

// cleanup drops expired pages, then the oldest ones while over the size cap
func (a *Analyzer) cleanup() {
	now := a.now()

	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()

	for key, entry := range a.cache {
		if now.Sub(entry.timestamp) > a.cacheTTL {
			delete(a.cache, key)
		}
	}
	if len(a.cache) <= a.maxCacheSize {
		return
	}

	type aged struct {
		key       string
		timestamp time.Time
	}
	entries := make([]aged, 0, len(a.cache))
	for key, entry := range a.cache {
		entries = append(entries, aged{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < len(entries)-a.maxCacheSize; i++ {
		delete(a.cache, entries[i].key)
	}
}

// generateCacheKey hashes a normalized URL
func generateCacheKey(rawURL string) string {
	hash := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// ClearCache drops every cached page
func (a *Analyzer) ClearCache() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cache = make(map[string]cacheEntry)
}

// GetCacheStats reports the cache size and this process's hit counts
func (a *Analyzer) GetCacheStats() CacheStats {
	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()
	return CacheStats{
		Entries:    len(a.cache),
		MaxEntries: a.maxCacheSize,
		TTL:        a.cacheTTL,
		Hits:       a.hits,
		Misses:     a.misses,
	}
}

// IsCached reports whether a fresh copy of rawURL is cached
func (a *Analyzer) IsCached(rawURL string) bool {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return false
	}
	_, ok := a.cached(generateCacheKey(u.String()))
	return ok
}

func (a *Analyzer) cached(key string) (Page, bool) {
	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()
	entry, found := a.cache[key]
	if found && a.now().Sub(entry.timestamp) < a.cacheTTL {
		return entry.page, true
	}
	return Page{}, false
}

// Analyze fetches (or reuses) the page and scores it
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	u, err := normalizeURL(req.URL)
	if err != nil {
		return nil, err
	}
	key := generateCacheKey(u.String())

	page, hit := a.cached(key)
	a.cacheMutex.Lock()
	if hit {
		a.hits++
	} else {
		a.misses++
	}
	a.cacheMutex.Unlock()
	if a.stats != nil {
		a.stats.RecordAnalysis(hit)
	}

	if !hit {
		page, err = a.fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		a.cacheMutex.Lock()
		a.cache[key] = cacheEntry{page: page, timestamp: a.now()}
		a.cacheMutex.Unlock()
	}

	values := page.Fields(req)
	res := a.scorer.Evaluate(values)
	a.log.Debug("page analyzed", "url", page.URL, "cached", hit, "score", res.Overall.Score)

	return &Analysis{
		ID:     uuid.NewString(),
		Page:   page,
		Fields: values,
		Result: res,
		Cached: hit,
	}, nil
}

func normalizeURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidURL, rawURL)
	}
	u.Fragment = ""
	return u, nil
}

func (a *Analyzer) fetch(ctx context.Context, u *url.URL) (Page, error) {
	start := a.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", "SEOScore/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := a.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, fmt.Errorf("%w: %s returned status %d", ErrFetch, u, resp.StatusCode)
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxPageSize)); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	loadTime := a.now().Sub(start)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	page := extract(doc, finalURL)
	page.URL = u.String()
	page.FinalURL = finalURL.String()
	page.StatusCode = resp.StatusCode
	page.PageSize = buf.Len()
	page.LoadTimeMs = loadTime.Milliseconds()
	page.FetchedAt = a.now()
	return page, nil
}

// Shutdown stops the cleanup loop and drops the cache. Statistics storage
// is owned by the caller.
func (a *Analyzer) Shutdown() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() {
		close(a.done)
		a.ClearCache()
	})
}
