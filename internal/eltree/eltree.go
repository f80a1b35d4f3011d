// Package eltree models tree-structured markup as a generic element tree with
// explicit lookup operations. Absent elements and whitespace-only content are
// reported as explicit misses rather than zero values, so callers can
// distinguish "not there" from "empty".
package eltree

import (
	"encoding/xml"
	"io"
	"strings"
)

// Node is one element in the tree. The synthetic document node returned by
// Parse has an empty Name and holds the top-level elements as children.
type Node struct {
	Name     string  // element name as written in the source
	Text     string  // direct character data, in document order
	Children []*Node // direct element children, in document order
}

// Parse builds an element tree from markup. The decoder is lenient: unknown
// entities, unclosed elements, and trailing garbage do not fail the parse.
// Structural problems surface later as failed lookups, not here.
func Parse(r io.Reader) (*Node, error) {
	doc := &Node{}
	stack := []*Node{doc}

	dec := xml.NewDecoder(r)
	dec.Strict = false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever parsed before the malformed region, as long as
			// there is something to keep.
			if len(doc.Children) > 0 {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			top := stack[len(stack)-1]
			top.Text += string(t)
		}
	}

	return doc, nil
}

// Content returns the element's direct text with surrounding whitespace
// removed. The second return is false when the element has no text or only
// whitespace, which callers treat the same as an absent element.
func (n *Node) Content() (string, bool) {
	if n == nil {
		return "", false
	}
	s := strings.TrimSpace(n.Text)
	if s == "" {
		return "", false
	}
	return s, true
}

// Find returns the first descendant whose name matches any of the given names
// (case-insensitive), in depth-first document order, or nil.
func (n *Node) Find(names ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if matchesAny(c.Name, names) {
			return c
		}
		if found := c.Find(names...); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant with a matching name (case-insensitive),
// in depth-first document order.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// Child returns the first direct child with a matching name
// (case-insensitive), without descending further, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Elements returns the direct element children. Character data between
// elements is not represented as children, so this is already the
// "ignore text nodes" view splitters want.
func (n *Node) Elements() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func matchesAny(name string, names []string) bool {
	for _, want := range names {
		if strings.EqualFold(name, want) {
			return true
		}
	}
	return false
}
