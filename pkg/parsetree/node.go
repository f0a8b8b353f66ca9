// Package parsetree gives the rest of the core a read-only view over the
// external parser's output: a Token is a (kind, offset, length) leaf, a
// Phrase is (kind, children). Node wraps a tree-sitter node (the concrete
// parser this module ships, see pkg/grammar) and exposes exactly that
// Token/Phrase shape — callers pattern-match on Kind()/IsToken() rather
// than type-switching, so swapping the underlying parser never requires
// touching SymbolExtractor or ParseTreeCursor.
package parsetree

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node is a read-only Token-or-Phrase view over one tree-sitter node plus
// the source bytes it was parsed from. A Node with no children is a Token;
// one with children is a Phrase. Neither variant is ever owned or mutated
// by the core — it is produced fresh from the parser's tree on each
// ParsedDocument reparse.
type Node struct {
	raw     *tree_sitter.Node
	content []byte
}

// Wrap adapts a tree-sitter node plus its source bytes into a Node.
// Tree.Root wraps the root of a tree produced by Parse; everything
// downstream consumes Node.
func Wrap(raw *tree_sitter.Node, content []byte) Node {
	return Node{raw: raw, content: content}
}

// Valid reports whether this Node wraps an actual tree-sitter node. The
// zero Node is invalid, used as a sentinel "not found" return value.
func (n Node) Valid() bool { return n.raw != nil }

// Kind returns the node's grammar-defined symbol name, e.g.
// "function_declaration" or "identifier".
func (n Node) Kind() string {
	if n.raw == nil {
		return ""
	}
	return n.raw.Kind()
}

// IsToken reports whether this node is a leaf (a Token in spec terms).
// IsNamed distinguishes grammar-significant tokens (identifiers, literals)
// from anonymous ones (punctuation, keywords spelled out in the grammar).
func (n Node) IsToken() bool {
	return n.raw == nil || n.raw.ChildCount() == 0
}

// IsNamed reports whether the grammar gave this node a semantic name
// (as opposed to an anonymous literal token like "{" or "class").
func (n Node) IsNamed() bool {
	return n.raw != nil && n.raw.IsNamed()
}

// IsError reports whether this node itself (not its ancestors) is a
// parser ERROR node — recognized partial-parse-tree nodes per
// §7: extraction must skip these rather than mine broken declarations out
// of them.
func (n Node) IsError() bool {
	return n.raw != nil && n.raw.IsError()
}

// HasError reports whether this node's subtree contains any ERROR node.
func (n Node) HasError() bool {
	return n.raw != nil && n.raw.HasError()
}

// StartByte returns the node's start offset in the source buffer.
func (n Node) StartByte() int {
	if n.raw == nil {
		return 0
	}
	return int(n.raw.StartByte())
}

// EndByte returns the node's end offset (exclusive) in the source buffer.
func (n Node) EndByte() int {
	if n.raw == nil {
		return 0
	}
	return int(n.raw.EndByte())
}

// Length returns EndByte() - StartByte().
func (n Node) Length() int { return n.EndByte() - n.StartByte() }

// Text returns the source text this node spans.
func (n Node) Text() string {
	if n.raw == nil || n.content == nil {
		return ""
	}
	s, e := n.StartByte(), n.EndByte()
	if s < 0 || e > len(n.content) || s > e {
		return ""
	}
	return string(n.content[s:e])
}

// ChildCount returns the number of children (zero for a Token).
func (n Node) ChildCount() int {
	if n.raw == nil {
		return 0
	}
	return int(n.raw.ChildCount())
}

// Child returns the i'th child, or an invalid Node if out of range.
func (n Node) Child(i int) Node {
	if n.raw == nil || i < 0 || i >= n.ChildCount() {
		return Node{}
	}
	c := n.raw.Child(uint(i))
	if c == nil {
		return Node{}
	}
	return Node{raw: c, content: n.content}
}

// Children returns all children as a slice (Phrase's children[]).
func (n Node) Children() []Node {
	count := n.ChildCount()
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// NamedChildren returns only the grammar-named children, skipping
// anonymous punctuation/keyword tokens.
func (n Node) NamedChildren() []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// ChildByFieldName returns the child tree-sitter has associated with the
// given grammar field name (e.g. "name", "body"), or an invalid Node.
func (n Node) ChildByFieldName(field string) Node {
	if n.raw == nil {
		return Node{}
	}
	c := n.raw.ChildByFieldName(field)
	if c == nil {
		return Node{}
	}
	return Node{raw: c, content: n.content}
}

// Parent returns this node's parent, or an invalid Node at the root.
func (n Node) Parent() Node {
	if n.raw == nil {
		return Node{}
	}
	p := n.raw.Parent()
	if p == nil {
		return Node{}
	}
	return Node{raw: p, content: n.content}
}

// Equal reports whether two Nodes refer to the same underlying tree node.
func (n Node) Equal(other Node) bool {
	if n.raw == nil || other.raw == nil {
		return n.raw == other.raw
	}
	return n.raw.Equal(other.raw)
}

// Point is a (row, column) pair as reported by the underlying parser; row
// and column are zero-based, matching text.Position's Line/Character.
type Point struct {
	Row    int
	Column int
}

// StartPoint returns the node's start row/column.
func (n Node) StartPoint() Point {
	if n.raw == nil {
		return Point{}
	}
	p := n.raw.StartPosition()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

// EndPoint returns the node's end row/column.
func (n Node) EndPoint() Point {
	if n.raw == nil {
		return Point{}
	}
	p := n.raw.EndPosition()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}
