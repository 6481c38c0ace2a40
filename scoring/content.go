package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentDoc is the parsed form of the content body, shared by every check
// of one evaluation pass.
type contentDoc struct {
	text       string
	words      []string
	headings   []string
	paragraphs []string
}

var (
	htmlTagPattern   = regexp.MustCompile(`(?i)<(p|h[1-6]|div|ul|ol|li|br|strong|em|b|i|a|span|article|section|img|blockquote|table)[\s/>]`)
	mdHeadingPattern = regexp.MustCompile(`^#{2,6}\s+(.+?)(?:\s+#+)?\s*$`)
)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true, "tr": true, "td": true,
	"th": true, "table": true, "pre": true, "header": true, "footer": true,
}

func parseContent(raw string) *contentDoc {
	if htmlTagPattern.MatchString(raw) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			return parseHTML(doc)
		}
	}
	return parsePlain(raw)
}

func parseHTML(doc *goquery.Document) *contentDoc {
	var b strings.Builder
	writeText(doc.Find("body"), &b)

	c := &contentDoc{text: strings.TrimSpace(b.String())}
	c.words = Tokens(c.text)

	doc.Find("h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			c.headings = append(c.headings, text)
		}
	})
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			c.paragraphs = append(c.paragraphs, text)
		}
	})
	if len(c.paragraphs) == 0 && c.text != "" {
		c.paragraphs = splitBlocks(c.text)
	}
	return c
}

// writeText flattens a node tree to text, breaking lines at block elements
// so words from adjacent blocks never run together.
func writeText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch name {
		case "#text":
			b.WriteString(s.Text())
			return
		case "#comment", "script", "style", "noscript":
			return
		}
		block := blockElements[name]
		if block {
			b.WriteString("\n")
		}
		writeText(s, b)
		if block {
			b.WriteString("\n")
		}
	})
}

func parsePlain(raw string) *contentDoc {
	c := &contentDoc{}
	var body []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := mdHeadingPattern.FindStringSubmatch(trimmed); m != nil {
			c.headings = append(c.headings, m[1])
			body = append(body, "")
			continue
		}
		body = append(body, line)
	}
	c.text = strings.TrimSpace(raw)
	c.words = Tokens(c.text)
	c.paragraphs = splitBlocks(strings.Join(body, "\n"))
	return c
}

// splitBlocks splits text into blank-line separated paragraphs
func splitBlocks(text string) []string {
	var (
		out     []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return out
}

// introWords returns the opening window of the content: the first
// introPercent of the words, capped at maxWords, but never shorter than the
// keyword itself.
func (c *contentDoc) introWords(introPercent float64, maxWords, minWords int) []string {
	n := int(math.Ceil(float64(len(c.words)) * introPercent / 100))
	if maxWords > 0 && n > maxWords {
		n = maxWords
	}
	if n < minWords {
		n = minWords
	}
	if n > len(c.words) {
		n = len(c.words)
	}
	return c.words[:n]
}

// occurrences counts non-overlapping occurrences of phrase in the content
func (c *contentDoc) occurrences(phrase []string) int {
	if len(phrase) == 0 {
		return 0
	}
	count := 0
	for i := 0; i+len(phrase) <= len(c.words); {
		if indexTokens(c.words[i:i+len(phrase)], phrase) == 0 {
			count++
			i += len(phrase)
			continue
		}
		i++
	}
	return count
}

func (c *contentDoc) averageParagraphWords() float64 {
	if len(c.paragraphs) == 0 {
		return 0
	}
	total := 0
	for _, p := range c.paragraphs {
		total += len(Tokens(p))
	}
	return float64(total) / float64(len(c.paragraphs))
}
