// Package htmlparse abstracts HTML parsing behind interchangeable
// backends selected by identifier. Every Parse call builds a fresh tree,
// so documents carry no shared state between calls.
package htmlparse

import "fmt"

// Backend identifies an HTML parser implementation.
type Backend string

const (
	// BackendGoquery parses with PuerkitoBio/goquery. Default.
	BackendGoquery Backend = "goquery"
	// BackendNetHTML walks the golang.org/x/net/html node tree directly.
	BackendNetHTML Backend = "nethtml"
	// BackendShioriDOM uses the go-shiori/dom helpers on top of x/net/html.
	BackendShioriDOM Backend = "shioridom"
)

// Backends lists the supported parser backends.
func Backends() []Backend {
	return []Backend{BackendGoquery, BackendNetHTML, BackendShioriDOM}
}

// Valid reports whether b names a supported backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendGoquery, BackendNetHTML, BackendShioriDOM:
		return true
	}
	return false
}

// Document is a parsed HTML page.
type Document interface {
	// Text returns the concatenated text of the document body with
	// script and style content excluded. Empty when there is no body.
	Text() string
	// Links returns the href values of all anchor elements, in document
	// order, unfiltered.
	Links() []string
	// HTML serializes the parsed tree back to HTML.
	HTML() (string, error)
}

// Parser builds a Document from raw HTML text.
type Parser interface {
	Parse(htmlBody string) (Document, error)
}

// NewParser returns the parser for the given backend identifier.
func NewParser(backend Backend) (Parser, error) {
	switch backend {
	case BackendGoquery:
		return goqueryParser{}, nil
	case BackendNetHTML:
		return netHTMLParser{}, nil
	case BackendShioriDOM:
		return shioriDOMParser{}, nil
	default:
		return nil, fmt.Errorf("unknown parser backend %q (supported: %v)", backend, Backends())
	}
}

// ParseError reports HTML the backend could not recover a tree from.
type ParseError struct {
	Backend Backend
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse with backend %s: %v", e.Backend, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
