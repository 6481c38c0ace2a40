package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// padTo extends s with a filler word to exactly n characters
func padTo(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	if n-len(s) == 1 {
		return s + "z"
	}
	return s + " " + strings.Repeat("z", n-len(s)-1)
}

const fillerSentence = "Good content answers real questions and earns trust over time. "

func fillerParagraph() string {
	return "<p>" + strings.TrimSpace(strings.Repeat(fillerSentence, 6)) + "</p>"
}

func optimalContent() string {
	var b strings.Builder
	b.WriteString("<p>SEO tips for beginners start here.</p>")
	b.WriteString("<h2>Why SEO tips matter</h2>")
	for i := 0; i < 5; i++ {
		b.WriteString(fillerParagraph())
	}
	b.WriteString("<h2>Keyword research and link building</h2>")
	b.WriteString("<p>Use these SEO tips with keyword research, link building and on page SEO every week.</p>")
	for i := 0; i < 6; i++ {
		b.WriteString(fillerParagraph())
	}
	b.WriteString("<p>Revisit these SEO tips often.</p>")
	return b.String()
}

// optimalForm satisfies every active criterion
func optimalForm(t *testing.T) FormFieldValues {
	t.Helper()
	v := FormFieldValues{
		Title:              "SEO Tips: 7 Proven Ways to Grow Your Organic Traffic",
		MetaTitle:          "SEO Tips for Beginners: A Complete 2024 Guide",
		MetaDescription:    padTo("Learn practical seo tips that help beginners grow organic traffic and rankings", 150),
		URLSlug:            "seo-tips-for-beginners",
		Content:            optimalContent(),
		PrimaryKeyword:     "seo tips",
		SecondaryKeywords:  []string{"keyword research", "link building", "on page seo"},
		ContentDescription: "A beginner friendly guide full of seo tips",
		Language:           "en",
		TargetCountry:      "us",
	}
	require.Len(t, v.Title, 52)
	require.Len(t, v.MetaTitle, 45)
	require.Len(t, v.MetaDescription, 150)
	return v
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}
