package completion

import (
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/resolve"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
	"github.com/corelang/splcore/pkg/typeagg"
)

// storeResolver adapts a Store to typeagg.Resolver, resolving an
// associated-set stub to its concrete symbol (§4.7 step 1).
type storeResolver struct{ store *store.Store }

func (r storeResolver) Resolve(stub symbols.Stub) *symbols.Symbol {
	return resolveSymbol(r.store, stub.Name, stub.Kind)
}

// membersOf flattens root's class hierarchy for member-access
// completion, favoring the root/earliest declaration of a given name
// (§4.7 First).
func membersOf(ctx *Context, root *symbols.Symbol) []*symbols.Symbol {
	return typeagg.Aggregate(root, storeResolver{store: ctx.Store}, typeagg.First)
}

// receiverType resolves the static type of a member-access or
// scope-resolution receiver expression: it peels call/subscript
// wrappers down to the innermost object, then asks the reference table
// for that node's resolved type, falling back to treating the
// receiver's own text as a class name for `ClassName.member` static
// access (§4.9 "walk up the receiver chain... ask the reference table
// for the resolved type at that node").
func receiverType(ctx *Context, receiver parsetree.Node) (string, bool) {
	n := receiver
	for n.Valid() {
		switch n.Kind() {
		case "call_expression":
			n = n.ChildByFieldName("function")
			continue
		case "subscript_expression":
			n = n.ChildByFieldName("object")
			continue
		}
		break
	}
	if !n.Valid() {
		return "", false
	}

	if n.Kind() == "this" {
		if cls := enclosingClass(ctx); cls != "" {
			return cls, true
		}
		return "", false
	}

	if ctx.RefTable != nil {
		for _, ref := range ctx.RefTable.At(n.EndByte() - 1) {
			if ref.Location.Start == n.StartByte() && ref.Location.End == n.EndByte() && ref.Resolved != "" {
				return ref.Resolved, true
			}
		}
	}

	name := ctx.Resolver().Resolve(n.Text(), resolve.Class)
	if resolveSymbol(ctx.Store, name, symbols.Class) != nil {
		return name, true
	}
	return "", false
}

// enclosingClass returns the FQN of the class/interface/trait owning
// the innermost scope at the request offset (§4.5 "scope()"; a method
// scope's Symbol.Scope field names its owning class directly).
func enclosingClass(ctx *Context) string {
	if ctx.Table == nil {
		return ""
	}
	scope := ctx.Table.Scope(ctx.Offset)
	if scope == nil {
		return ""
	}
	if scope.Kind.ClassLike() {
		return scope.Name
	}
	return scope.Scope
}
