package htmlparse

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

type shioriDOMParser struct{}

func (shioriDOMParser) Parse(htmlBody string) (Document, error) {
	root, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		return nil, &ParseError{Backend: BackendShioriDOM, Err: err}
	}
	return &shioriDOMDocument{root: root}, nil
}

type shioriDOMDocument struct {
	root *html.Node
}

func (d *shioriDOMDocument) Text() string {
	bodies := dom.GetElementsByTagName(d.root, "body")
	if len(bodies) == 0 {
		return ""
	}
	body := bodies[0]
	dom.RemoveNodes(dom.GetAllNodesWithTag(body, "script", "style"), nil)
	return dom.TextContent(body)
}

func (d *shioriDOMDocument) Links() []string {
	var links []string
	for _, anchor := range dom.GetElementsByTagName(d.root, "a") {
		if dom.HasAttribute(anchor, "href") {
			links = append(links, dom.GetAttribute(anchor, "href"))
		}
	}
	return links
}

func (d *shioriDOMDocument) HTML() (string, error) {
	return dom.OuterHTML(d.root), nil
}
