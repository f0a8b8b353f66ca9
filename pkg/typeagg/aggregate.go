// Package typeagg implements TypeAggregate (§4.7): flattening a class
// with its base classes, implemented interfaces, and composed traits into
// a merged member view honoring visibility rules.
package typeagg

import (
	"strings"

	"github.com/corelang/splcore/pkg/symbols"
)

// MergeStrategy controls how duplicate member names across the
// associated set are reconciled (§4.7 step 3).
type MergeStrategy int

const (
	// None concatenates every occurrence, preserving duplicates for
	// diagnostics.
	None MergeStrategy = iota
	// First keeps the earliest occurrence of each name.
	First
	// Documented behaves like First, but a later duplicate carrying
	// documentation replaces an earlier undocumented one.
	Documented
)

// Resolver resolves an associated-set stub to its concrete class-like
// symbol, via the workspace SymbolStore. Returning nil drops the stub
// from the associated set (an unresolved base is simply absent, not an
// error — §7 not-found handling).
type Resolver interface {
	Resolve(stub symbols.Stub) *symbols.Symbol
}

type entry struct {
	member *symbols.Symbol
	owner  *symbols.Symbol
}

// Aggregate produces the ordered, merged member list for root under
// strategy (§4.7).
func Aggregate(root *symbols.Symbol, resolver Resolver, strategy MergeStrategy) []*symbols.Symbol {
	order := associatedSet(root, resolver)

	var entries []entry
	for _, owner := range order {
		for _, member := range owner.Children {
			if owner != root && member.Modifiers.Visibility() == symbols.Private {
				continue
			}
			entries = append(entries, entry{member: member, owner: owner})
		}
	}

	return applyStrategy(entries, strategy)
}

// associatedSet performs the breadth-first walk of §4.7 step 1: starting
// from root, resolve each stub name through resolver to a concrete
// symbol, skip duplicates by (kind, name) identity, and stop at cycles —
// a cyclical hierarchy yields the members discovered so far rather than
// recursing forever (§9 "Cyclic structures").
func associatedSet(root *symbols.Symbol, resolver Resolver) []*symbols.Symbol {
	visited := map[string]bool{stubKey(symbols.Stub{Kind: root.Kind, Name: root.Name}): true}
	order := []*symbols.Symbol{root}

	queue := append([]symbols.Stub(nil), root.Associated...)
	for len(queue) > 0 {
		stub := queue[0]
		queue = queue[1:]

		key := stubKey(stub)
		if visited[key] {
			continue
		}
		visited[key] = true

		sym := resolver.Resolve(stub)
		if sym == nil {
			continue
		}
		order = append(order, sym)
		queue = append(queue, sym.Associated...)
	}
	return order
}

func stubKey(s symbols.Stub) string {
	return s.Kind.String() + "|" + s.Name
}

// memberKey matches §4.7's "case-insensitive for functions/methods and
// case-sensitive for fields" member-name rule.
func memberKey(m *symbols.Symbol) string {
	if m.Kind == symbols.Method || m.Kind == symbols.Function {
		return "m:" + strings.ToLower(m.Name)
	}
	return "f:" + m.Name
}

func applyStrategy(entries []entry, strategy MergeStrategy) []*symbols.Symbol {
	switch strategy {
	case First:
		seen := make(map[string]bool, len(entries))
		out := make([]*symbols.Symbol, 0, len(entries))
		for _, e := range entries {
			k := memberKey(e.member)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, e.member)
		}
		return out
	case Documented:
		index := make(map[string]int, len(entries))
		out := make([]*symbols.Symbol, 0, len(entries))
		for _, e := range entries {
			k := memberKey(e.member)
			if i, ok := index[k]; ok {
				if out[i].Doc == "" && e.member.Doc != "" {
					out[i] = e.member
				}
				continue
			}
			index[k] = len(out)
			out = append(out, e.member)
		}
		return out
	default: // None
		out := make([]*symbols.Symbol, len(entries))
		for i, e := range entries {
			out[i] = e.member
		}
		return out
	}
}
