package htmlparse

import (
	"strings"

	"golang.org/x/net/html"
)

type netHTMLParser struct{}

func (netHTMLParser) Parse(htmlBody string) (Document, error) {
	root, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		return nil, &ParseError{Backend: BackendNetHTML, Err: err}
	}
	return &netHTMLDocument{root: root}, nil
}

type netHTMLDocument struct {
	root *html.Node
}

func (d *netHTMLDocument) Text() string {
	body := findElement(d.root, "body")
	if body == nil {
		return ""
	}
	var sb strings.Builder
	collectText(body, &sb)
	return sb.String()
}

func (d *netHTMLDocument) Links() []string {
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					links = append(links, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return links
}

func (d *netHTMLDocument) HTML() (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, d.root); err != nil {
		return "", &ParseError{Backend: BackendNetHTML, Err: err}
	}
	return sb.String(), nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
