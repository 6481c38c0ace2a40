package analyzer

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/contentscore/scoring"
)

// contentRoots are tried in order to find the main body of a page
var contentRoots = []string{"article", "main", "[role='main']", "body"}

// chrome is page furniture that never counts as content
const chrome = "script, style, noscript, template, nav, header, footer, aside, form, iframe"

func extract(doc *goquery.Document, u *url.URL) Page {
	p := Page{
		MetaTitle:       strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: metaContent(doc, "meta[name='description']"),
		OGDescription:   metaContent(doc, "meta[property='og:description']"),
		Lang:            strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		Slug:            slugOf(u),
		H1Count:         doc.Find("h1").Length(),
	}

	p.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if p.Title == "" {
		p.Title = metaContent(doc, "meta[property='og:title']")
	}
	if p.Title == "" {
		p.Title = p.MetaTitle
	}

	if kw := metaContent(doc, "meta[name='keywords']"); kw != "" {
		p.MetaKeywords = scoring.SplitKeywords(kw)
	}

	doc.Find("meta[name='viewport']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.AttrOr("content", "")), "width=device-width") {
			p.MobileOptimized = true
			return false
		}
		return true
	})

	p.Content = mainContent(doc)
	return p
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// mainContent returns the inner HTML of the first content root, without
// page chrome and without the page's h1, which is scored as the title.
func mainContent(doc *goquery.Document) string {
	for _, sel := range contentRoots {
		root := doc.Find(sel).First()
		if root.Length() == 0 {
			continue
		}
		root = root.Clone()
		root.Find(chrome).Remove()
		root.Find("h1").Remove()
		html, err := root.Html()
		if err != nil {
			continue
		}
		if strings.TrimSpace(root.Text()) != "" {
			return strings.TrimSpace(html)
		}
	}
	return ""
}

// slugOf returns the last path segment without a file extension
func slugOf(u *url.URL) string {
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return ""
	}
	last := path.Base(p)
	if ext := path.Ext(last); ext != "" && ext != last {
		last = strings.TrimSuffix(last, ext)
	}
	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}
	return last
}

// Fields builds the form snapshot for the page. Values in req take
// precedence over what was found on the page.
func (p Page) Fields(req Request) scoring.FormFieldValues {
	v := scoring.FormFieldValues{
		Title:              p.Title,
		MetaTitle:          p.MetaTitle,
		MetaDescription:    p.MetaDescription,
		URLSlug:            p.Slug,
		Content:            p.Content,
		ContentDescription: p.OGDescription,
		PrimaryKeyword:     strings.TrimSpace(req.PrimaryKeyword),
		Language:           strings.TrimSpace(req.Language),
		TargetCountry:      strings.TrimSpace(req.TargetCountry),
	}
	secondary := scoring.SplitKeywords(strings.Join(req.SecondaryKeywords, ","))

	if v.PrimaryKeyword == "" && len(p.MetaKeywords) > 0 {
		v.PrimaryKeyword = p.MetaKeywords[0]
		if len(secondary) == 0 {
			secondary = p.MetaKeywords[1:]
		}
	}
	v.SecondaryKeywords = append([]string(nil), secondary...)

	lang, region := splitLang(p.Lang)
	if v.Language == "" {
		v.Language = lang
	}
	if v.TargetCountry == "" {
		v.TargetCountry = region
	}
	return v
}

// splitLang splits "en-US" into "en" and "us"
func splitLang(tag string) (lang, region string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", ""
	}
	lang, region, _ = strings.Cut(strings.ReplaceAll(tag, "_", "-"), "-")
	if len(region) != 2 {
		region = ""
	}
	return lang, region
}
