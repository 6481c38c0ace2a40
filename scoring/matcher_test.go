package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		name     string
		haystack string
		needle   string
		opts     MatchOptions
		want     MatchTier
	}{
		{"exact phrase", "Great seo tips for beginners", "seo tips", DefaultMatchOptions(), MatchExact},
		{"case folded", "SEO Tips that work", "seo tips", DefaultMatchOptions(), MatchExact},
		{"case sensitive", "SEO Tips that work", "seo tips", MatchOptions{ExactMatch: true, CaseSensitive: true}, MatchNone},
		{"hyphen boundary", "best-seo-tips-guide", "seo tips", DefaultMatchOptions(), MatchExact},
		{"partial word", "tips for better rankings", "seo tips", DefaultMatchOptions(), MatchPartial},
		{"short words ignored for partial", "seo for everyone", "seo tips", MatchOptions{PartialMatch: true}, MatchNone},
		{"joined words", "best seotips guide", "seo tips", DefaultMatchOptions(), MatchStem},
		{"suffix forms", "shoes reviewed here", "shoe review", DefaultMatchOptions(), MatchStem},
		{"inside a word is not exact", "seotips", "seo", MatchOptions{ExactMatch: true}, MatchNone},
		{"no tiers selected", "seo tips", "seo tips", MatchOptions{}, MatchNone},
		{"absent", "gardening for beginners", "seo tips", DefaultMatchOptions(), MatchNone},
		{"empty haystack", "", "seo tips", DefaultMatchOptions(), MatchNone},
		{"empty needle", "seo tips", "   ", DefaultMatchOptions(), MatchNone},
		{"accents", "Café crème recipes", "CAFÉ CRÈME", DefaultMatchOptions(), MatchExact},
		{"decomposed accents", "Cafe\u0301 menu", "café", DefaultMatchOptions(), MatchExact},
		{
			"synonym capped at partial",
			"best search engine optimization advice",
			"seo tips",
			MatchOptions{ExactMatch: true, Synonyms: []string{"search engine optimization"}},
			MatchPartial,
		},
		{"lenient skips exact", "seo tips", "seo tips", LenientMatchOptions(), MatchPartial},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.haystack, tc.needle, tc.opts))
		})
	}
}

func TestMatchDeterministic(t *testing.T) {
	opts := DefaultMatchOptions()
	first := Match("Learn seo tips and tricks", "seo tricks", opts)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Match("Learn seo tips and tricks", "seo tricks", opts))
	}
}

func TestMatchTierOrdering(t *testing.T) {
	assert.Less(t, MatchNone, MatchStem)
	assert.Less(t, MatchStem, MatchPartial)
	assert.Less(t, MatchPartial, MatchExact)
	assert.Equal(t, "partial", MatchPartial.String())
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"tips":     "tip",
		"running":  "runn",
		"reviewed": "review",
		"boxes":    "box",
		"writer":   "writ",
		"bed":      "bed",
		"is":       "is",
		"seo":      "seo",
	}
	for in, want := range cases {
		assert.Equal(t, want, stem(in), in)
	}
}

func TestIndexTokensEmptyNeedle(t *testing.T) {
	assert.Equal(t, -1, indexTokens([]string{"seo", "tips"}, nil))
	assert.Equal(t, 1, indexTokens([]string{"best", "seo", "tips"}, []string{"seo", "tips"}))
}
