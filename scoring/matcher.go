package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchTier grades how well a keyword is present in a text
type MatchTier int

const (
	MatchNone MatchTier = iota
	MatchStem
	MatchPartial
	MatchExact
)

func (t MatchTier) String() string {
	switch t {
	case MatchStem:
		return "stem"
	case MatchPartial:
		return "partial"
	case MatchExact:
		return "exact"
	}
	return "none"
}

// MarshalText encodes the tier by name
func (t MatchTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// MatchOptions selects which tiers Match attempts
type MatchOptions struct {
	ExactMatch    bool
	PartialMatch  bool
	Stemming      bool
	CaseSensitive bool
	Synonyms      []string
	// MinPartialWordLen is the shortest needle word that counts for a
	// partial match. Zero means 4.
	MinPartialWordLen int
}

// DefaultMatchOptions attempts every tier, case-insensitively
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{ExactMatch: true, PartialMatch: true, Stemming: true}
}

// LenientMatchOptions skips the exact tier; it answers "is the keyword
// roughly there" for quick presence checks.
func LenientMatchOptions() MatchOptions {
	return MatchOptions{PartialMatch: true, Stemming: true}
}

var stemSuffixes = []string{"ing", "ed", "es", "er", "s"}

// minStemLen is the shortest stem kept after suffix stripping, and the
// shortest needle word considered by the stem tier.
const minStemLen = 3

// Match reports the strongest tier at which needle occurs in haystack.
// Empty input yields MatchNone.
func Match(haystack, needle string, opts MatchOptions) MatchTier {
	if strings.TrimSpace(haystack) == "" || strings.TrimSpace(needle) == "" {
		return MatchNone
	}
	hay := tokenize(normalize(haystack, opts.CaseSensitive))
	best := matchTokens(hay, tokenize(normalize(needle, opts.CaseSensitive)), opts)
	if best == MatchExact {
		return best
	}
	for _, syn := range opts.Synonyms {
		if strings.TrimSpace(syn) == "" {
			continue
		}
		tier := matchTokens(hay, tokenize(normalize(syn, opts.CaseSensitive)), opts)
		if tier > MatchPartial {
			tier = MatchPartial
		}
		if tier > best {
			best = tier
		}
	}
	return best
}

// Contains reports whether needle occurs at any tier
func Contains(haystack, needle string, opts MatchOptions) bool {
	return Match(haystack, needle, opts) > MatchNone
}

func matchTokens(hay, needle []string, opts MatchOptions) MatchTier {
	if len(hay) == 0 || len(needle) == 0 {
		return MatchNone
	}
	if opts.ExactMatch && indexTokens(hay, needle) >= 0 {
		return MatchExact
	}
	if opts.PartialMatch && partialTokens(hay, needle, opts.MinPartialWordLen) {
		return MatchPartial
	}
	if opts.Stemming && stemTokens(hay, needle) {
		return MatchStem
	}
	return MatchNone
}

// indexTokens returns the token offset of the first contiguous occurrence of
// needle in hay, or -1. An empty needle never matches.
func indexTokens(hay, needle []string) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		matched := true
		for j, tok := range needle {
			if hay[i+j] != tok {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

func partialTokens(hay, needle []string, minLen int) bool {
	if len(needle) < 2 {
		return false
	}
	if minLen <= 0 {
		minLen = 4
	}
	for _, tok := range needle {
		if utf8.RuneCountInString(tok) < minLen {
			continue
		}
		for _, h := range hay {
			if h == tok {
				return true
			}
		}
	}
	return false
}

func stemTokens(hay, needle []string) bool {
	if len(needle) > 1 {
		joined := strings.Join(needle, "")
		for _, h := range hay {
			if strings.Contains(h, joined) {
				return true
			}
		}
	}
	considered := 0
	for _, tok := range needle {
		if utf8.RuneCountInString(tok) < minStemLen {
			continue
		}
		considered++
		s := stem(tok)
		found := false
		for _, h := range hay {
			if strings.Contains(h, s) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return considered > 0
}

// stem strips one common English suffix
func stem(word string) string {
	for _, suffix := range stemSuffixes {
		if !strings.HasSuffix(word, suffix) {
			continue
		}
		base := strings.TrimSuffix(word, suffix)
		if utf8.RuneCountInString(base) >= minStemLen {
			return base
		}
	}
	return word
}

func normalize(s string, caseSensitive bool) string {
	s = norm.NFC.String(s)
	if caseSensitive {
		return s
	}
	// a Caser keeps state, so one is built per call
	return cases.Fold().String(s)
}

// tokenize splits s into maximal runs of letters and digits
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokens returns the case-folded word tokens of s
func Tokens(s string) []string {
	return tokenize(normalize(s, false))
}
