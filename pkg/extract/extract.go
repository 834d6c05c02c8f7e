// Package extract turns parsed HTML documents into visible text,
// link sets, readable articles and alternate renderings.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yosssi/gohtml"

	"github.com/andrealenzi11/go-web-miner/pkg/htmlparse"
)

var (
	fiveOrMoreNewlines = regexp.MustCompile(`\n{5,}`)
	fourNewlines       = regexp.MustCompile(`\n{4}`)
	twoOrThreeNewlines = regexp.MustCompile(`\n{2,3}`)

	sanitizer = bluemonday.StrictPolicy()
)

// Text returns the document's visible text with newline runs collapsed:
// five or more become three, exactly four become two, two or three
// become one.
func Text(doc htmlparse.Document) string {
	return NormalizeWhitespace(doc.Text())
}

// NormalizeWhitespace collapses newline runs and trims the result.
func NormalizeWhitespace(text string) string {
	text = fiveOrMoreNewlines.ReplaceAllString(text, "\n\n\n")
	text = fourNewlines.ReplaceAllString(text, "\n\n")
	text = twoOrThreeNewlines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// LinkFilter decides whether an href value belongs in the extracted set.
type LinkFilter func(link string) bool

// AbsoluteURLs keeps links with an absolute http or https URL.
func AbsoluteURLs(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ExternalTo keeps absolute links whose host differs from the given one.
func ExternalTo(host string) LinkFilter {
	return func(link string) bool {
		if !AbsoluteURLs(link) {
			return false
		}
		u, err := url.Parse(link)
		if err != nil {
			return false
		}
		return !strings.EqualFold(u.Hostname(), host)
	}
}

// Links returns the document's absolute http(s) links, de-duplicated,
// in first-seen order.
func Links(doc htmlparse.Document) []string {
	return LinksFunc(doc, AbsoluteURLs)
}

// LinksFunc returns the document's links accepted by the filter,
// de-duplicated, in first-seen order.
func LinksFunc(doc htmlparse.Document, filter LinkFilter) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)
	for _, link := range doc.Links() {
		if seen[link] || !filter(link) {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// Article is the readable portion of a page.
type Article struct {
	Title   string
	Byline  string
	Excerpt string
	Text    string
}

// ReadableArticle runs readability extraction over the page and returns
// sanitized article fields. pageURL resolves relative references and may
// be empty.
func ReadableArticle(htmlBody, pageURL string) (Article, error) {
	pu, err := url.Parse(pageURL)
	if err != nil {
		return Article{}, err
	}
	art, err := readability.FromReader(strings.NewReader(htmlBody), pu)
	if err != nil {
		return Article{}, err
	}
	return Article{
		Title:   sanitizer.Sanitize(art.Title),
		Byline:  sanitizer.Sanitize(art.Byline),
		Excerpt: sanitizer.Sanitize(art.Excerpt),
		Text:    NormalizeWhitespace(art.TextContent),
	}, nil
}

// Markdown converts HTML to Markdown.
func Markdown(htmlBody string) (string, error) {
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(htmlBody)
}

// Prettify re-indents HTML for human-readable output.
func Prettify(htmlBody string) string {
	return gohtml.Format(htmlBody)
}
