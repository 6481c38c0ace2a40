package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/contentscore/scoring"
	"github.com/seo-optimizer/contentscore/stats"
)

const samplePage = `<!DOCTYPE html>
<html lang="en-US">
<head>
  <title>SEO Tips for Beginners: A Complete 2024 Guide</title>
  <meta name="description" content="Learn practical seo tips that help beginners grow organic traffic.">
  <meta property="og:description" content="A beginner friendly guide full of seo tips">
  <meta name="keywords" content="seo tips, keyword research, link building">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
  <nav><a href="/">Home</a> menu words</nav>
  <article>
    <h1>SEO Tips: 7 Proven Ways to Grow Your Organic Traffic</h1>
    <p>SEO tips for beginners start here.</p>
    <h2>Why SEO tips matter</h2>
    <p>Keyword research and link building both help.</p>
    <script>var tracking = true;</script>
  </article>
  <footer>footer text</footer>
</body>
</html>`

func newPageServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/blog/seo-tips-for-beginners.html", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, samplePage)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	e, err := scoring.NewEngine()
	require.NoError(t, err)
	a := New(e, 5*time.Second, opts...)
	t.Cleanup(a.Shutdown)
	return a
}

func TestAnalyzeExtractsFields(t *testing.T) {
	var hits int32
	srv := newPageServer(t, &hits)
	a := newTestAnalyzer(t)

	res, err := a.Analyze(context.Background(), Request{
		URL:           srv.URL + "/blog/seo-tips-for-beginners.html#intro",
		TargetCountry: "gb",
	})
	require.NoError(t, err)

	f := res.Fields
	assert.Equal(t, "SEO Tips: 7 Proven Ways to Grow Your Organic Traffic", f.Title)
	assert.Equal(t, "SEO Tips for Beginners: A Complete 2024 Guide", f.MetaTitle)
	assert.Equal(t, "Learn practical seo tips that help beginners grow organic traffic.", f.MetaDescription)
	assert.Equal(t, "A beginner friendly guide full of seo tips", f.ContentDescription)
	assert.Equal(t, "seo-tips-for-beginners", f.URLSlug)
	assert.Equal(t, "seo tips", f.PrimaryKeyword)
	assert.Equal(t, []string{"keyword research", "link building"}, f.SecondaryKeywords)
	assert.Equal(t, "en", f.Language)
	assert.Equal(t, "gb", f.TargetCountry)

	assert.Contains(t, f.Content, "<h2>Why SEO tips matter</h2>")
	assert.NotContains(t, f.Content, "menu words")
	assert.NotContains(t, f.Content, "footer text")
	assert.NotContains(t, f.Content, "tracking")
	assert.NotContains(t, f.Content, "<h1>")

	assert.Equal(t, 1, res.Page.H1Count)
	assert.True(t, res.Page.MobileOptimized)
	assert.Equal(t, http.StatusOK, res.Page.StatusCode)
	assert.Positive(t, res.Page.PageSize)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.Cached)

	item, ok := res.Result.Criterion(201)
	require.True(t, ok)
	assert.Equal(t, scoring.StatusSuccess, item.Status)
	item, ok = res.Result.Criterion(404)
	require.True(t, ok)
	assert.Equal(t, scoring.StatusSuccess, item.Status)
}

func TestAnalyzeUsesCache(t *testing.T) {
	var hits int32
	srv := newPageServer(t, &hits)
	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Shutdown()

	a := newTestAnalyzer(t, WithStats(storage))
	pageURL := srv.URL + "/blog/seo-tips-for-beginners.html"

	first, err := a.Analyze(context.Background(), Request{URL: pageURL})
	require.NoError(t, err)
	assert.True(t, a.IsCached(pageURL))

	second, err := a.Analyze(context.Background(), Request{URL: pageURL, PrimaryKeyword: "organic traffic"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, second.Cached)
	assert.Equal(t, "organic traffic", second.Fields.PrimaryKeyword)
	assert.NotEqual(t, first.ID, second.ID)

	cs := a.GetCacheStats()
	assert.Equal(t, 1, cs.Entries)
	assert.Equal(t, 1, cs.Hits)
	assert.Equal(t, 1, cs.Misses)

	month := storage.GetCurrentStats()
	assert.Equal(t, 2, month.PageAnalyses)
	assert.Equal(t, 1, month.AnalysisCacheHits)

	a.ClearCache()
	assert.False(t, a.IsCached(pageURL))
}

func TestAnalyzeCacheExpires(t *testing.T) {
	var hits int32
	srv := newPageServer(t, &hits)
	a := newTestAnalyzer(t, WithCacheTTL(time.Minute))
	now := time.Now()
	a.now = func() time.Time { return now }
	pageURL := srv.URL + "/blog/seo-tips-for-beginners.html"

	_, err := a.Analyze(context.Background(), Request{URL: pageURL})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.False(t, a.IsCached(pageURL))
	a.cleanup()
	assert.Zero(t, a.GetCacheStats().Entries)
}

func TestCleanupEnforcesSize(t *testing.T) {
	a := newTestAnalyzer(t, WithMaxCacheSize(2))
	base := time.Now()
	for i := 0; i < 4; i++ {
		a.cache[fmt.Sprint(i)] = cacheEntry{timestamp: base.Add(time.Duration(i) * time.Second)}
	}
	a.cleanup()

	assert.Len(t, a.cache, 2)
	assert.Contains(t, a.cache, "2")
	assert.Contains(t, a.cache, "3")
}

func TestAnalyzeErrors(t *testing.T) {
	var hits int32
	srv := newPageServer(t, &hits)
	a := newTestAnalyzer(t)

	_, err := a.Analyze(context.Background(), Request{URL: "ftp://example.com/file"})
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = a.Analyze(context.Background(), Request{URL: "/relative"})
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = a.Analyze(context.Background(), Request{URL: srv.URL + "/missing"})
	assert.ErrorIs(t, err, ErrFetch)
	assert.False(t, a.IsCached(srv.URL+"/missing"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Analyze(ctx, Request{URL: srv.URL + "/blog/seo-tips-for-beginners.html"})
	assert.ErrorIs(t, err, ErrFetch)
}

func TestPageFieldsPrecedence(t *testing.T) {
	p := Page{Lang: "fr_CA", MetaKeywords: []string{"a", "b"}}

	v := p.Fields(Request{PrimaryKeyword: "x", SecondaryKeywords: []string{"y, z"}, Language: "en"})
	assert.Equal(t, "x", v.PrimaryKeyword)
	assert.Equal(t, []string{"y", "z"}, v.SecondaryKeywords)
	assert.Equal(t, "en", v.Language)
	assert.Equal(t, "ca", v.TargetCountry)

	v = p.Fields(Request{})
	assert.Equal(t, "a", v.PrimaryKeyword)
	assert.Equal(t, []string{"b"}, v.SecondaryKeywords)
	assert.Equal(t, "fr", v.Language)
}

func TestSlugOf(t *testing.T) {
	cases := []struct{ raw, want string }{
		{"https://example.com/", ""},
		{"https://example.com/blog/my-post/", "my-post"},
		{"https://example.com/blog/my-post.html", "my-post"},
		{"https://example.com/caf%C3%A9-guide", "café-guide"},
		{"https://example.com/blog/post?x=1", "post"},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.raw)
		require.NoError(t, err)
		assert.Equal(t, tc.want, slugOf(u), tc.raw)
	}
}

func TestExtractFallbacks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><title>Only Title</title></head><body><p>Plain body text</p></body></html>`))
	require.NoError(t, err)

	u, _ := url.Parse("https://example.com/")
	p := extract(doc, u)
	assert.Equal(t, "Only Title", p.Title)
	assert.Equal(t, "<p>Plain body text</p>", p.Content)
	assert.False(t, p.MobileOptimized)
	assert.Empty(t, p.Lang)
}
