// Package document loads saved HTML pages and exposes a small query API over
// the parsed tree. Lookups that match nothing return empty results rather than
// errors, so callers decide which regions are mandatory.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed HTML page.
type Document struct {
	Node
	doc *goquery.Document
}

// Parse builds a Document from raw markup.
func Parse(html string) (*Document, error) {
	return ParseReader(strings.NewReader(html))
}

// ParseReader builds a Document from a reader.
func ParseReader(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{
		Node: Node{sel: doc.Selection},
		doc:  doc,
	}, nil
}

// Node is a single element in the tree. The zero value is an absent node.
type Node struct {
	sel *goquery.Selection
}

// Exists reports whether the node refers to an element.
func (n Node) Exists() bool {
	return n.sel != nil && n.sel.Length() > 0
}

// FindFirst returns the first descendant with the given tag that satisfies
// every filter. An empty tag matches any element.
func (n Node) FindFirst(tag string, filters ...Filter) (Node, bool) {
	if !n.Exists() {
		return Node{}, false
	}
	match := n.find(tag, filters).First()
	if match.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: match}, true
}

// FindAll returns every matching descendant in document order.
func (n Node) FindAll(tag string, filters ...Filter) []Node {
	if !n.Exists() {
		return nil
	}
	matches := n.find(tag, filters)
	nodes := make([]Node, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

func (n Node) find(tag string, filters []Filter) *goquery.Selection {
	if tag == "" {
		tag = "*"
	}
	found := n.sel.Find(tag)
	if len(filters) == 0 {
		return found
	}
	return found.FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, f := range filters {
			if !f.Matches(s) {
				return false
			}
		}
		return true
	})
}

// Text returns the combined text of the node and its descendants.
func (n Node) Text() string {
	if !n.Exists() {
		return ""
	}
	return n.sel.Text()
}

// TrimmedText returns Text with leading and trailing whitespace removed.
func (n Node) TrimmedText() string {
	return strings.TrimSpace(n.Text())
}

// NormalizedText returns Text with whitespace runs collapsed.
func (n Node) NormalizedText() string {
	return NormalizeSpace(n.Text())
}

// Attr returns the value of the named attribute.
func (n Node) Attr(name string) (string, bool) {
	if !n.Exists() {
		return "", false
	}
	return n.sel.Attr(name)
}

// Tag returns the element name, or an empty string for absent nodes.
func (n Node) Tag() string {
	if !n.Exists() {
		return ""
	}
	return goquery.NodeName(n.sel)
}
