// Package meta parses the LIF XML header and discovers the image
// descriptors it declares.
package meta

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Node is one element of the parsed metadata document. The generic
// unmarshal keeps the full tree available, so callers can query parts of
// the document the walker does not consume (hardware settings, laser
// tables, and so on).
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
}

// ParseHeader parses the XML header text into a tree.
func ParseHeader(text string) (*Node, error) {
	var root Node
	if err := xml.Unmarshal([]byte(strings.TrimSpace(text)), &root); err != nil {
		return nil, fmt.Errorf("parse XML header: %w", err)
	}
	return &root, nil
}

// Attr returns the value of the named attribute and whether it exists.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrMap returns all attributes as a key/value map.
func (n *Node) AttrMap() map[string]string {
	if len(n.Attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}

// ChildrenNamed returns the direct child elements with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Find walks a chain of child element names and returns the first match at
// each step, or nil if any step is missing.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		next := cur.ChildrenNamed(name)
		if len(next) == 0 {
			return nil
		}
		cur = next[0]
	}
	return cur
}

// FindAll walks a chain of child element names, following every match at
// every step, and returns the nodes at the end of the chain.
func (n *Node) FindAll(path ...string) []*Node {
	nodes := []*Node{n}
	for _, name := range path {
		var next []*Node
		for _, cur := range nodes {
			next = append(next, cur.ChildrenNamed(name)...)
		}
		if len(next) == 0 {
			return nil
		}
		nodes = next
	}
	return nodes
}

// Descendants returns every element in the subtree (excluding n itself)
// with the given name, in document order.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for i := range cur.Children {
			child := &cur.Children[i]
			if child.XMLName.Local == name {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}
