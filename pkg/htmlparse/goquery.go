package htmlparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type goqueryParser struct{}

func (goqueryParser) Parse(htmlBody string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, &ParseError{Backend: BackendGoquery, Err: err}
	}
	return &goqueryDocument{doc: doc}, nil
}

type goqueryDocument struct {
	doc *goquery.Document
}

func (d *goqueryDocument) Text() string {
	body := d.doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	// Each Parse builds a fresh tree, so dropping nodes here cannot
	// affect other callers.
	body.Find("script, style").Remove()
	return body.Text()
}

func (d *goqueryDocument) Links() []string {
	var links []string
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}

func (d *goqueryDocument) HTML() (string, error) {
	return d.doc.Html()
}
