package stats

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Traffic tracks request-level usage of the HTTP API. Nothing here is
// persisted.
type Traffic struct {
	mu           sync.RWMutex
	visitors     map[string]time.Time // ip -> last visit
	requests     int
	errors       int
	totalLatency time.Duration
	pages        map[string]int
	now          func() time.Time
}

// TrafficSnapshot is the public view of Traffic
type TrafficSnapshot struct {
	UniqueVisitors24h int            `json:"uniqueVisitors24h"`
	TotalRequests     int            `json:"totalRequests"`
	ErrorRate         float64        `json:"errorRate"`
	AverageLatencyMs  float64        `json:"averageLatencyMs"`
	PopularPages      map[string]int `json:"popularPages,omitempty"`
}

// NewTraffic returns an empty tracker
func NewTraffic() *Traffic {
	return &Traffic{
		visitors: make(map[string]time.Time),
		pages:    make(map[string]int),
		now:      time.Now,
	}
}

// TrackVisitor records a visit from ip
func (t *Traffic) TrackVisitor(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visitors[ip] = t.now()
}

// TrackRequest records one finished request
func (t *Traffic) TrackRequest(latency time.Duration, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++
	t.totalLatency += latency
	if failed {
		t.errors++
	}
}

// TrackPage counts an analyzed page URL. Local and API URLs are ignored.
func (t *Traffic) TrackPage(rawURL string) {
	page := cleanURL(rawURL)
	if page == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages[page]++
}

// cleanURL reduces a URL to scheme, host and path
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || host == "127.0.0.1" || strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}
	clean := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}
	return strings.TrimSuffix(clean, "/")
}

// Snapshot summarizes the counters. Popular pages are only included when
// detail is set.
func (t *Traffic) Snapshot(detail bool) TrafficSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := TrafficSnapshot{TotalRequests: t.requests}
	cutoff := t.now().Add(-24 * time.Hour)
	for _, last := range t.visitors {
		if last.After(cutoff) {
			snap.UniqueVisitors24h++
		}
	}
	if t.requests > 0 {
		snap.ErrorRate = float64(t.errors) / float64(t.requests) * 100
		snap.AverageLatencyMs = float64(t.totalLatency.Milliseconds()) / float64(t.requests)
	}
	if detail {
		snap.PopularPages = t.topPages(5)
	}
	return snap
}

func (t *Traffic) topPages(n int) map[string]int {
	type entry struct {
		page  string
		count int
	}
	entries := make([]entry, 0, len(t.pages))
	for page, count := range t.pages {
		entries = append(entries, entry{page, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].page < entries[j].page
	})
	out := make(map[string]int, n)
	for i := 0; i < len(entries) && i < n; i++ {
		out[entries[i].page] = entries[i].count
	}
	return out
}
