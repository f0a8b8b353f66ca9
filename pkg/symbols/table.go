package symbols

import "github.com/corelang/splcore/pkg/resolve"

// Table is a per-URI tree of Symbols rooted at a synthetic File symbol
// (§3 SymbolTable, §4.5).
type Table struct {
	uri    string
	Root   *Symbol
	events []NamespaceEvent
}

// URI returns the document URI this table was extracted from.
func (t *Table) URI() string { return t.uri }

func isScopeKind(k Kind) bool {
	switch k {
	case Function, Method, Class, Interface, Trait, Namespace, File:
		return true
	default:
		return false
	}
}

// SymbolAt returns the symbol whose location most tightly contains
// offset; when multiple nested scopes match, the innermost wins (§4.5
// symbols_in).
func (t *Table) SymbolAt(offset int) *Symbol {
	best := t.Root
	var descend func(s *Symbol)
	descend = func(s *Symbol) {
		for _, c := range s.Children {
			if c.Location.Contains(offset) {
				best = c
				descend(c)
				return
			}
		}
	}
	descend(t.Root)
	return best
}

// Scope returns the innermost function/method/closure/class/namespace/
// file symbol containing offset (§4.5 scope).
func (t *Table) Scope(offset int) *Symbol {
	scope := t.Root
	var descend func(s *Symbol)
	descend = func(s *Symbol) {
		for _, c := range s.Children {
			if c.Location.Contains(offset) {
				if isScopeKind(c.Kind) {
					scope = c
				}
				descend(c)
				return
			}
		}
	}
	descend(t.Root)
	return scope
}

// NameResolverAt replays the file's namespace-definition and
// namespace-use declarations up to offset and returns the resulting
// resolver (§4.5 name_resolver_at). Bodies of inner scopes do not
// redefine namespaces, so this is linear in namespace-/import-related
// declarations preceding offset rather than in the whole tree.
func (t *Table) NameResolverAt(offset int) *resolve.Resolver {
	r := resolve.New()
	for _, e := range t.events {
		if e.Offset > offset {
			break
		}
		if e.SetNamespace != nil {
			r.SetNamespace(*e.SetNamespace)
		}
		if e.Rule != nil {
			r.AddRule(*e.Rule)
		}
	}
	return r
}

// NamespaceInsertionOffset returns the byte offset at which a new
// use-declaration should be inserted for the namespace in effect at
// offset (§4.9, §8 Scenario 5): the top of the body of the last namespace
// declaration starting at or before offset, or 0 (top of file) when there
// is none. Like NameResolverAt it replays namespace events in order, so a
// namespace whose block has already closed before offset still counts.
func (t *Table) NamespaceInsertionOffset(offset int) int {
	insertion := 0
	for _, e := range t.events {
		if e.Offset > offset {
			break
		}
		if e.SetNamespace != nil {
			insertion = e.BodyOffset
		}
	}
	return insertion
}

// Walk visits every symbol in the table depth-first, root first.
func (t *Table) Walk(fn func(*Symbol)) {
	var descend func(s *Symbol)
	descend = func(s *Symbol) {
		fn(s)
		for _, c := range s.Children {
			descend(c)
		}
	}
	descend(t.Root)
}

// FindFQN returns the first symbol in the table whose Name matches fqn
// under kind's case-sensitivity rule (§4.6 find), or nil.
func (t *Table) FindFQN(fqn string, kind Kind) *Symbol {
	var found *Symbol
	t.Walk(func(s *Symbol) {
		if found != nil || s.Kind != kind {
			return
		}
		if sameName(s.Name, fqn, kind) {
			found = s
		}
	})
	return found
}

func sameName(a, b string, kind Kind) bool {
	if kind.CaseSensitiveName() {
		return a == b
	}
	return equalFold(a, b)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
