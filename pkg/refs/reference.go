// Package refs implements the per-document usage-site model (§3
// Reference / ReferenceTable, §4.8).
package refs

import "github.com/corelang/splcore/pkg/symbols"

// Reference is one usage site: a call, type reference, or import alias
// (§3 Reference).
type Reference struct {
	Kind      symbols.Kind // same enum as Symbol.
	Name      string
	Location  symbols.Location
	Resolved  string // optional resolved type; Extract never sets it and nothing in this module fills it in.
	Alternate string // optional alternate name, e.g. an import alias.
}

// Scope is one node of the nested spatial-partition scope tree: its
// Range strictly contains every child Scope's Range and every one of its
// own References' Location (§3 "a scope tree is a spatial partition").
type Scope struct {
	Range      symbols.Location
	References []Reference
	Children   []*Scope
}

// Table is a per-URI ReferenceTable: a tree of nested Scopes whose leaves
// are References.
type Table struct {
	uri  string
	Root *Scope
}

// NewTable creates a Table with a root scope spanning the whole document.
func NewTable(uri string, fileRange symbols.Location) *Table {
	return &Table{uri: uri, Root: &Scope{Range: fileRange}}
}

// URI returns the document URI this table was built for.
func (t *Table) URI() string { return t.uri }

// innermost returns the deepest scope under s whose Range contains
// offset.
func innermost(s *Scope, offset int) *Scope {
	for _, c := range s.Children {
		if c.Range.Contains(offset) {
			return innermost(c, offset)
		}
	}
	return s
}

// Add records ref in the innermost scope containing its location.
func (t *Table) Add(ref Reference) {
	s := innermost(t.Root, ref.Location.Start)
	s.References = append(s.References, ref)
}

// PushScope creates and attaches a new child scope under the innermost
// scope containing rng, and returns it — used by the extractor to
// partition function/method/class bodies into nested scopes as it walks.
func (t *Table) PushScope(rng symbols.Location) *Scope {
	parent := innermost(t.Root, rng.Start)
	child := &Scope{Range: rng}
	parent.Children = append(parent.Children, child)
	return child
}

// At returns every reference visible at offset: the references recorded
// directly in the innermost containing scope.
func (t *Table) At(offset int) []Reference {
	return innermost(t.Root, offset).References
}

// Walk visits every reference in the table, scope by scope, root first.
func (t *Table) Walk(fn func(Reference)) {
	var descend func(s *Scope)
	descend = func(s *Scope) {
		for _, r := range s.References {
			fn(r)
		}
		for _, c := range s.Children {
			descend(c)
		}
	}
	descend(t.Root)
}
