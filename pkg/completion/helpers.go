package completion

import (
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/resolve"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
)

// parentNode returns the current node's immediate parent by reading the
// cursor's spine, without mutating the cursor (unlike Cursor.Parent).
func parentNode(cur *parsetree.Cursor) parsetree.Node {
	spine := cur.Spine()
	if len(spine) < 2 {
		return parsetree.Node{}
	}
	return spine[len(spine)-2]
}

// nearestAncestorNode returns the closest strict ancestor of the
// cursor's current node whose Kind() is in kinds, read-only.
func nearestAncestorNode(cur *parsetree.Cursor, kinds ...string) parsetree.Node {
	spine := cur.Spine()
	for i := len(spine) - 2; i >= 0; i-- {
		k := spine[i].Kind()
		for _, want := range kinds {
			if k == want {
				return spine[i]
			}
		}
	}
	return parsetree.Node{}
}

func hasAncestorKind(cur *parsetree.Cursor, kinds ...string) bool {
	return nearestAncestorNode(cur, kinds...).Valid()
}

func keywordItems(words ...string) []Item {
	items := make([]Item, len(words))
	for i, w := range words {
		items[i] = keywordItem(w)
	}
	return items
}

// itemsFromSummaries resolves each match to its concrete Symbol via the
// store and builds a completion Item for it.
func itemsFromSummaries(ctx *Context, matches []store.Summary, resolver *resolve.Resolver) []Item {
	var items []Item
	for _, m := range matches {
		sym := resolveSymbol(ctx.Store, m.FQN, m.Kind)
		if sym == nil {
			continue
		}
		items = append(items, buildItem(sym, resolver, ctx))
	}
	return items
}

// resolveSymbol looks up fqn/kind across every indexed table.
func resolveSymbol(s *store.Store, fqn string, kind symbols.Kind) *symbols.Symbol {
	if s == nil {
		return nil
	}
	results := s.Find(fqn, kind, nil)
	if len(results) == 0 {
		return nil
	}
	table := s.Table(results[0].URI)
	if table == nil {
		return nil
	}
	return table.FindFQN(results[0].FQN, kind)
}
