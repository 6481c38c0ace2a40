package scoring

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// checks maps each active rule id to its criterion logic
var checks = map[int]checkFunc{
	101: keywordIn(FieldMetaDescription),
	102: checkKeywordInSlug,
	103: checkKeywordInIntro,
	104: keywordIn(FieldContentDescription),
	105: checkSecondaryDefined,
	106: checkKeywordDensity,
	107: checkContentLength,
	201: checkTitleStart,
	202: lengthIn(FieldTitle, func(t Thresholds) LengthBands { return t.TitleLength }, "Title"),
	203: lengthIn(FieldMetaTitle, func(t Thresholds) LengthBands { return t.MetaTitleLength }, "Meta Title"),
	204: keywordIn(FieldMetaTitle),
	205: checkTitleNumber,
	301: lengthIn(FieldMetaDescription, func(t Thresholds) LengthBands { return t.MetaDescriptionLength }, "Description"),
	302: checkSubheadings,
	303: checkParagraphs,
	305: checkKeywordInHeadings,
	401: checkSlugLength,
	402: checkSlugCharacters,
	403: checkSlugHyphens,
	404: checkLocale,
	405: checkSecondaryInContent,
}

func keywordIn(field FieldKey) checkFunc {
	return func(c *evalContext, r Rule) outcome {
		kw := strings.TrimSpace(c.values.PrimaryKeyword)
		tier := Match(c.values.Get(field), kw, c.matchOptions())
		return outcome{tier: tier.String(), tooltip: keywordTooltip(field.Label(), kw, tier)}
	}
}

func keywordTooltip(where, kw string, tier MatchTier) string {
	where = strings.ToLower(where)
	switch tier {
	case MatchExact:
		return fmt.Sprintf("The %s contains the focus keyword %q.", where, kw)
	case MatchPartial:
		return fmt.Sprintf("The %s contains part of %q. Use the full keyword for full points.", where, kw)
	case MatchStem:
		return fmt.Sprintf("The %s only contains a variation of %q. Use the exact keyword for full points.", where, kw)
	}
	return fmt.Sprintf("Add the focus keyword %q to the %s.", kw, where)
}

func checkKeywordInSlug(c *evalContext, r Rule) outcome {
	kw := strings.TrimSpace(c.values.PrimaryKeyword)
	// slugs separate words with hyphens or underscores; the tokenizer
	// already treats both as boundaries
	tier := Match(c.values.URLSlug, kw, c.matchOptions())
	return outcome{tier: tier.String(), tooltip: keywordTooltip("URL slug", kw, tier)}
}

func checkKeywordInIntro(c *evalContext, r Rule) outcome {
	kw := strings.TrimSpace(c.values.PrimaryKeyword)
	doc := c.content()
	opts := MatchOptions{ExactMatch: true, Stemming: true}
	th := c.thresholds

	intro := doc.introWords(th.IntroPercent, th.IntroMaxWords, len(Tokens(kw)))
	if Contains(strings.Join(intro, " "), kw, opts) {
		return outcome{
			tier:    "intro",
			tooltip: fmt.Sprintf("The focus keyword %q appears within the first %d words.", kw, len(intro)),
		}
	}
	if Contains(doc.text, kw, opts) {
		return outcome{
			tier: "later",
			tooltip: fmt.Sprintf("The focus keyword %q appears in the content but not within the first %d words. Mention it earlier.",
				kw, len(intro)),
		}
	}
	return outcome{
		tier:    "absent",
		tooltip: fmt.Sprintf("The focus keyword %q does not appear in the content.", kw),
	}
}

func checkSecondaryDefined(c *evalContext, r Rule) outcome {
	count := len(c.values.Keywords())
	target := c.thresholds.SecondaryKeywordsTarget
	tooltip := fmt.Sprintf("%d secondary keyword(s) defined; %d or more are recommended.", count, target)
	switch {
	case count >= target:
		return outcome{tier: "complete", tooltip: fmt.Sprintf("%d secondary keywords defined.", count)}
	case count >= 2:
		return outcome{tier: "two", tooltip: tooltip}
	case count == 1:
		return outcome{tier: "one", tooltip: tooltip}
	}
	return outcome{tier: "none", tooltip: tooltip}
}

func checkKeywordDensity(c *evalContext, r Rule) outcome {
	doc := c.content()
	kw := Tokens(c.values.PrimaryKeyword)
	if len(doc.words) == 0 || len(kw) == 0 {
		return outcome{tier: "off", tooltip: "The content has no words to measure keyword density."}
	}
	hits := doc.occurrences(kw)
	density := float64(hits*len(kw)) / float64(len(doc.words)) * 100
	bands := c.thresholds.KeywordDensity

	tooltip := fmt.Sprintf("Keyword density is %.1f%% (%d use(s) in %d words); aim for %.1f-%.1f%%.",
		density, hits, len(doc.words), bands.Optimal.Min, bands.Optimal.Max)
	action := "Use Keyword More"
	if density > bands.Optimal.Max {
		action = "Reduce Keyword Use"
	}
	switch {
	case bands.Optimal.Contains(density):
		return outcome{tier: "optimal", tooltip: tooltip}
	case bands.Acceptable.Contains(density):
		return outcome{tier: "acceptable", tooltip: tooltip, action: action}
	}
	return outcome{tier: "off", tooltip: tooltip, action: action}
}

func checkContentLength(c *evalContext, r Rule) outcome {
	words := len(c.content().words)
	th := c.thresholds
	switch {
	case words >= th.ContentWordsOptimal:
		return outcome{tier: "long", tooltip: fmt.Sprintf("The content has %d words.", words)}
	case words >= th.ContentWordsAcceptable:
		return outcome{tier: "medium", tooltip: fmt.Sprintf("The content has %d words; %d or more are recommended.",
			words, th.ContentWordsOptimal)}
	}
	return outcome{tier: "short", tooltip: fmt.Sprintf("The content has only %d words; write at least %d.",
		words, th.ContentWordsAcceptable)}
}

func checkTitleStart(c *evalContext, r Rule) outcome {
	kw := strings.TrimSpace(c.values.PrimaryKeyword)
	needle := Tokens(kw)
	if len(needle) == 0 {
		return outcome{tier: "absent", tooltip: fmt.Sprintf("%q has no words to look for in the title.", kw)}
	}
	title := Tokens(c.values.Title)
	idx := indexTokens(title, needle)
	window := c.thresholds.TitleStartWindow

	switch {
	case idx == 0:
		return outcome{tier: "start", tooltip: fmt.Sprintf("The title starts with %q.", kw)}
	case idx > 0 && idx < window:
		return outcome{tier: "early", tooltip: fmt.Sprintf("%q starts at word %d of the title. Move it to the very beginning.", kw, idx+1)}
	case idx >= window:
		return outcome{tier: "later", tooltip: fmt.Sprintf("%q starts at word %d of the title. Move it closer to the beginning.", kw, idx+1)}
	}
	if Contains(c.values.Title, kw, LenientMatchOptions()) {
		return outcome{tier: "later", tooltip: fmt.Sprintf("The title only contains part of %q. Start the title with the full keyword.", kw)}
	}
	return outcome{tier: "absent", tooltip: fmt.Sprintf("The title does not contain %q.", kw)}
}

func lengthIn(field FieldKey, bands func(Thresholds) LengthBands, noun string) checkFunc {
	return func(c *evalContext, r Rule) outcome {
		n := utf8.RuneCountInString(strings.TrimSpace(c.values.Get(field)))
		b := bands(c.thresholds)
		label := strings.ToLower(field.Label())
		if b.Optimal.Contains(float64(n)) {
			return outcome{tier: "optimal", tooltip: fmt.Sprintf("The %s is %d characters long.", label, n)}
		}
		tooltip := fmt.Sprintf("The %s is %d characters long; aim for %.0f-%.0f characters.",
			label, n, b.Optimal.Min, b.Optimal.Max)
		action := "Lengthen " + noun
		if float64(n) > b.Optimal.Max {
			action = "Shorten " + noun
		}
		if b.Acceptable.Contains(float64(n)) {
			return outcome{tier: "acceptable", tooltip: tooltip, action: action}
		}
		return outcome{tier: "outside", tooltip: tooltip}
	}
}

func checkTitleNumber(c *evalContext, r Rule) outcome {
	for _, ch := range c.values.Title {
		if unicode.IsDigit(ch) {
			return outcome{tier: "number"}
		}
	}
	return outcome{tier: "none", tooltip: "Add a number to the title, e.g. \"7 ways to ...\"."}
}

func checkSubheadings(c *evalContext, r Rule) outcome {
	n := len(c.content().headings)
	th := c.thresholds
	switch {
	case n >= th.SubheadingsOptimal:
		return outcome{tier: "several", tooltip: fmt.Sprintf("The content has %d subheadings.", n)}
	case n >= th.SubheadingsAcceptable:
		return outcome{tier: "single", tooltip: fmt.Sprintf("The content has %d subheading; use at least %d.", n, th.SubheadingsOptimal)}
	}
	return outcome{tier: "none", tooltip: "Break the content up with subheadings (H2, H3)."}
}

func checkParagraphs(c *evalContext, r Rule) outcome {
	doc := c.content()
	avg := doc.averageParagraphWords()
	th := c.thresholds
	tooltip := fmt.Sprintf("Paragraphs average %.0f words over %d paragraph(s); keep them under %.0f.",
		avg, len(doc.paragraphs), th.ParagraphWordsOptimal)
	switch {
	case avg <= th.ParagraphWordsOptimal:
		return outcome{tier: "short", tooltip: tooltip}
	case avg <= th.ParagraphWordsAcceptable:
		return outcome{tier: "long", tooltip: tooltip}
	}
	return outcome{tier: "wall", tooltip: tooltip}
}

func checkKeywordInHeadings(c *evalContext, r Rule) outcome {
	kw := strings.TrimSpace(c.values.PrimaryKeyword)
	headings := c.content().headings
	if len(headings) == 0 {
		return outcome{tier: MatchNone.String(), tooltip: fmt.Sprintf("Add a subheading containing %q.", kw)}
	}
	best := MatchNone
	for _, h := range headings {
		if tier := Match(h, kw, c.matchOptions()); tier > best {
			best = tier
		}
	}
	return outcome{tier: best.String(), tooltip: keywordTooltip("best subheading", kw, best)}
}

func checkSlugLength(c *evalContext, r Rule) outcome {
	n := utf8.RuneCountInString(strings.TrimSpace(c.values.URLSlug))
	th := c.thresholds
	switch {
	case n <= th.SlugLengthOptimal:
		return outcome{tier: "short", tooltip: fmt.Sprintf("The URL slug is %d characters long.", n)}
	case n <= th.SlugLengthAcceptable:
		return outcome{tier: "long", tooltip: fmt.Sprintf("The URL slug is %d characters long; keep it under %d.", n, th.SlugLengthOptimal)}
	}
	return outcome{tier: "too_long", tooltip: fmt.Sprintf("The URL slug is %d characters long; keep it under %d.", n, th.SlugLengthOptimal)}
}

func checkSlugCharacters(c *evalContext, r Rule) outcome {
	var upper, invalid []rune
	for _, ch := range strings.TrimSpace(c.values.URLSlug) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-':
		case ch >= 'A' && ch <= 'Z':
			upper = append(upper, ch)
		default:
			invalid = append(invalid, ch)
		}
	}
	switch {
	case len(invalid) > 0:
		return outcome{tier: "invalid", tooltip: fmt.Sprintf("Remove the characters %q from the URL slug; use only a-z, 0-9 and hyphens.", string(dedupeRunes(invalid)))}
	case len(upper) > 0:
		return outcome{tier: "uppercase", tooltip: "Use lowercase letters only in the URL slug."}
	}
	return outcome{tier: "clean"}
}

func dedupeRunes(in []rune) []rune {
	seen := make(map[rune]bool, len(in))
	out := make([]rune, 0, len(in))
	for _, r := range in {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func checkSlugHyphens(c *evalContext, r Rule) outcome {
	slug := strings.TrimSpace(c.values.URLSlug)
	var issues []string
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		issues = append(issues, "leading or trailing hyphen")
	}
	if strings.Contains(slug, "--") {
		issues = append(issues, "repeated hyphens")
	}
	if strings.Contains(slug, "_") {
		issues = append(issues, "underscores instead of hyphens")
	}
	if strings.IndexFunc(slug, unicode.IsSpace) >= 0 {
		issues = append(issues, "spaces instead of hyphens")
	}
	switch len(issues) {
	case 0:
		return outcome{tier: "clean"}
	case 1:
		return outcome{tier: "minor", tooltip: "The URL slug has " + issues[0] + "."}
	}
	return outcome{tier: "broken", tooltip: "The URL slug has " + strings.Join(issues, ", ") + "."}
}

func checkLocale(c *evalContext, r Rule) outcome {
	lang, country := c.values.Language, c.values.TargetCountry
	ok, known := c.thresholds.compatible(lang, country)
	switch {
	case ok:
		return outcome{tier: "compatible", tooltip: fmt.Sprintf("Language %q fits target country %q.", lang, country)}
	case !known:
		return outcome{tier: "incompatible", tooltip: fmt.Sprintf("Language %q is not supported for country targeting.", lang)}
	}
	return outcome{tier: "incompatible", tooltip: fmt.Sprintf("Language %q is not commonly used in target country %q.", lang, country)}
}

func checkSecondaryInContent(c *evalContext, r Rule) outcome {
	keywords := c.values.Keywords()
	text := c.content().text
	opts := MatchOptions{ExactMatch: true, Stemming: true}

	var missing []string
	for _, kw := range keywords {
		if !Contains(text, kw, opts) {
			missing = append(missing, kw)
		}
	}
	found := len(keywords) - len(missing)
	tooltip := fmt.Sprintf("%d of %d secondary keywords appear in the content.", found, len(keywords))
	if len(missing) > 0 {
		tooltip += fmt.Sprintf(" Missing: %s.", strings.Join(missing, ", "))
	}
	switch {
	case found == len(keywords):
		return outcome{tier: "all", tooltip: tooltip}
	case found*2 >= len(keywords):
		return outcome{tier: "most", tooltip: tooltip}
	case found > 0:
		return outcome{tier: "some", tooltip: tooltip}
	}
	return outcome{tier: "none", tooltip: tooltip}
}
