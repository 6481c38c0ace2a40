package scoring

import (
	"fmt"
	"strings"
)

// Band is an inclusive numeric range
type Band struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the band
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// LengthBands grades a character or word count: inside Optimal earns the top
// tier, inside Acceptable the middle tier, anything else nothing.
type LengthBands struct {
	Optimal    Band `yaml:"optimal" json:"optimal"`
	Acceptable Band `yaml:"acceptable" json:"acceptable"`
}

// Thresholds holds every numeric limit used by the criterion checks
type Thresholds struct {
	PartialMinWordLen int `yaml:"partial_min_word_len" json:"partialMinWordLen"`

	IntroPercent  float64 `yaml:"intro_percent" json:"introPercent"`
	IntroMaxWords int     `yaml:"intro_max_words" json:"introMaxWords"`

	TitleStartWindow int `yaml:"title_start_window" json:"titleStartWindow"`

	TitleLength           LengthBands `yaml:"title_length" json:"titleLength"`
	MetaTitleLength       LengthBands `yaml:"meta_title_length" json:"metaTitleLength"`
	MetaDescriptionLength LengthBands `yaml:"meta_description_length" json:"metaDescriptionLength"`
	KeywordDensity        LengthBands `yaml:"keyword_density" json:"keywordDensity"`

	ContentWordsOptimal    int `yaml:"content_words_optimal" json:"contentWordsOptimal"`
	ContentWordsAcceptable int `yaml:"content_words_acceptable" json:"contentWordsAcceptable"`

	SubheadingsOptimal    int `yaml:"subheadings_optimal" json:"subheadingsOptimal"`
	SubheadingsAcceptable int `yaml:"subheadings_acceptable" json:"subheadingsAcceptable"`

	ParagraphWordsOptimal    float64 `yaml:"paragraph_words_optimal" json:"paragraphWordsOptimal"`
	ParagraphWordsAcceptable float64 `yaml:"paragraph_words_acceptable" json:"paragraphWordsAcceptable"`

	SlugLengthOptimal    int `yaml:"slug_length_optimal" json:"slugLengthOptimal"`
	SlugLengthAcceptable int `yaml:"slug_length_acceptable" json:"slugLengthAcceptable"`

	SecondaryKeywordsTarget int `yaml:"secondary_keywords_target" json:"secondaryKeywordsTarget"`

	// LanguageCountries maps a lowercase language code to the lowercase ISO
	// country codes it is compatible with.
	LanguageCountries map[string][]string `yaml:"language_countries" json:"languageCountries"`
	// GlobalTargets are target values compatible with any language
	GlobalTargets []string `yaml:"global_targets" json:"globalTargets"`
}

// DefaultThresholds returns the product's SEO limits
func DefaultThresholds() Thresholds {
	return Thresholds{
		PartialMinWordLen: 4,
		IntroPercent:      10,
		IntroMaxWords:     100,
		TitleStartWindow:  4,
		TitleLength: LengthBands{
			Optimal:    Band{Min: 50, Max: 60},
			Acceptable: Band{Min: 40, Max: 70},
		},
		MetaTitleLength: LengthBands{
			Optimal:    Band{Min: 40, Max: 60},
			Acceptable: Band{Min: 30, Max: 70},
		},
		MetaDescriptionLength: LengthBands{
			Optimal:    Band{Min: 140, Max: 160},
			Acceptable: Band{Min: 120, Max: 170},
		},
		KeywordDensity: LengthBands{
			Optimal:    Band{Min: 1.0, Max: 2.5},
			Acceptable: Band{Min: 0.5, Max: 3.5},
		},
		ContentWordsOptimal:      600,
		ContentWordsAcceptable:   300,
		SubheadingsOptimal:       2,
		SubheadingsAcceptable:    1,
		ParagraphWordsOptimal:    120,
		ParagraphWordsAcceptable: 200,
		SlugLengthOptimal:        50,
		SlugLengthAcceptable:     75,
		SecondaryKeywordsTarget:  3,
		LanguageCountries: map[string][]string{
			"en": {"us", "gb", "ca", "au", "nz", "ie", "in", "za"},
			"es": {"es", "mx", "ar", "co", "cl", "pe", "us"},
			"fr": {"fr", "ca", "be", "ch", "lu"},
			"de": {"de", "at", "ch", "lu"},
			"it": {"it", "ch"},
			"pt": {"pt", "br"},
			"nl": {"nl", "be"},
			"sv": {"se", "fi"},
			"da": {"dk"},
			"no": {"no"},
			"fi": {"fi"},
			"pl": {"pl"},
			"ja": {"jp"},
			"zh": {"cn", "tw", "hk", "sg"},
			"ko": {"kr"},
		},
		GlobalTargets: []string{"global", "worldwide", "international"},
	}
}

// Validate reports inconsistent limits
func (t Thresholds) Validate() error {
	bands := map[string]LengthBands{
		"title_length":            t.TitleLength,
		"meta_title_length":       t.MetaTitleLength,
		"meta_description_length": t.MetaDescriptionLength,
		"keyword_density":         t.KeywordDensity,
	}
	for name, b := range bands {
		if b.Optimal.Min > b.Optimal.Max {
			return fmt.Errorf("%s: optimal min %.1f above max %.1f", name, b.Optimal.Min, b.Optimal.Max)
		}
		if b.Acceptable.Min > b.Optimal.Min || b.Acceptable.Max < b.Optimal.Max {
			return fmt.Errorf("%s: acceptable band must enclose the optimal band", name)
		}
	}
	if t.IntroPercent <= 0 || t.IntroPercent > 100 {
		return fmt.Errorf("intro_percent must be in (0, 100], got %.1f", t.IntroPercent)
	}
	if t.ContentWordsAcceptable > t.ContentWordsOptimal {
		return fmt.Errorf("content_words_acceptable above content_words_optimal")
	}
	if t.SubheadingsAcceptable > t.SubheadingsOptimal {
		return fmt.Errorf("subheadings_acceptable above subheadings_optimal")
	}
	if t.ParagraphWordsOptimal > t.ParagraphWordsAcceptable {
		return fmt.Errorf("paragraph_words_optimal above paragraph_words_acceptable")
	}
	if t.SlugLengthOptimal > t.SlugLengthAcceptable {
		return fmt.Errorf("slug_length_optimal above slug_length_acceptable")
	}
	if t.SecondaryKeywordsTarget < 1 {
		return fmt.Errorf("secondary_keywords_target must be positive")
	}
	return nil
}

// compatible reports whether language and country fit together, and whether
// the language is known at all.
func (t Thresholds) compatible(language, country string) (ok, known bool) {
	lang := normalizeLocale(language)
	target := normalizeLocale(country)
	for _, g := range t.GlobalTargets {
		if target == g {
			return true, true
		}
	}
	countries, known := t.LanguageCountries[lang]
	if !known {
		return false, false
	}
	if target == "uk" {
		target = "gb"
	}
	for _, c := range countries {
		if c == target {
			return true, true
		}
	}
	return false, true
}

// normalizeLocale lowercases a code and drops any region suffix, so "en-US"
// and "EN_us" both become "en".
func normalizeLocale(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
