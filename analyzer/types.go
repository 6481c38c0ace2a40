package analyzer

import (
	"time"

	"github.com/seo-optimizer/contentscore/scoring"
)

// Request names the page to import and the keywords to score it against.
// Empty keywords fall back to the page's meta keywords; empty locale
// fields fall back to the page's lang attribute.
type Request struct {
	URL               string   `json:"url" binding:"required"`
	PrimaryKeyword    string   `json:"primaryKeyword"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	Language          string   `json:"language"`
	TargetCountry     string   `json:"targetCountry"`
}

// Page is what was extracted from one fetched document
type Page struct {
	URL             string    `json:"url"`
	FinalURL        string    `json:"finalUrl"`
	StatusCode      int       `json:"statusCode"`
	Title           string    `json:"title"`
	MetaTitle       string    `json:"metaTitle"`
	MetaDescription string    `json:"metaDescription"`
	OGDescription   string    `json:"ogDescription,omitempty"`
	Slug            string    `json:"slug"`
	Lang            string    `json:"lang,omitempty"`
	MetaKeywords    []string  `json:"metaKeywords,omitempty"`
	Content         string    `json:"-"`
	H1Count         int       `json:"h1Count"`
	PageSize        int       `json:"pageSize"`
	LoadTimeMs      int64     `json:"loadTimeMs"`
	MobileOptimized bool      `json:"mobileOptimized"`
	FetchedAt       time.Time `json:"fetchedAt"`
}

// Analysis is an imported page with its score
type Analysis struct {
	ID     string                  `json:"id"`
	Page   Page                    `json:"page"`
	Fields scoring.FormFieldValues `json:"fields"`
	Result scoring.Result          `json:"result"`
	Cached bool                    `json:"cached"`
}

// CacheStats describes the page cache
type CacheStats struct {
	Entries    int           `json:"entries"`
	MaxEntries int           `json:"maxEntries"`
	TTL        time.Duration `json:"ttl"`
	Hits       int           `json:"hits"`
	Misses     int           `json:"misses"`
}
