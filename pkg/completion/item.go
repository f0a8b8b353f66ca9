// Package completion implements CompletionDispatcher (§4.9): an ordered
// chain of gated strategies that turn a cursor position into a list of
// completion items.
package completion

import (
	"strings"

	"github.com/corelang/splcore/pkg/resolve"
	"github.com/corelang/splcore/pkg/symbols"
	"github.com/corelang/splcore/pkg/text"
)

// ItemKind mirrors the symbol kind a completion item represents, plus a
// couple of presentation-only kinds (Keyword, MagicConstant) that have
// no corresponding Symbol.
type ItemKind int

const (
	ItemClass ItemKind = iota
	ItemInterface
	ItemTrait
	ItemNamespace
	ItemFunction
	ItemMethod
	ItemConstructor
	ItemProperty
	ItemConstant
	ItemVariable
	ItemKeyword
	ItemMagicConstant
)

// EditorCommand is attached to an Item when accepting it should trigger
// a follow-up editor action (§4.9 "attach a trigger parameter hints
// editor command").
type EditorCommand struct {
	Title string
	ID    string
}

var triggerParameterHints = &EditorCommand{Title: "Trigger Parameter Hints", ID: "editor.action.triggerParameterHints"}

// Item is one completion candidate (§4.9 "Completion-item construction").
type Item struct {
	Kind                ItemKind
	Label               string
	Detail              string
	Documentation       string
	InsertText          string
	IsSnippet           bool
	Command             *EditorCommand
	AdditionalTextEdits []text.Edit
}

func itemKindFor(k symbols.Kind) ItemKind {
	switch k {
	case symbols.Class:
		return ItemClass
	case symbols.Interface:
		return ItemInterface
	case symbols.Trait:
		return ItemTrait
	case symbols.Namespace:
		return ItemNamespace
	case symbols.Function:
		return ItemFunction
	case symbols.Method:
		return ItemMethod
	case symbols.Constructor:
		return ItemConstructor
	case symbols.Property:
		return ItemProperty
	case symbols.Constant, symbols.ClassConstant:
		return ItemConstant
	case symbols.Variable, symbols.Parameter:
		return ItemVariable
	default:
		return ItemVariable
	}
}

// notFQN returns name's final namespace segment (§4.9 "label
// (notFqn(name))").
func notFQN(name string) string {
	parts := strings.Split(name, resolve.Separator)
	return parts[len(parts)-1]
}

func hasParameters(sym *symbols.Symbol) bool {
	for _, c := range sym.Children {
		if c.Kind == symbols.Parameter {
			return true
		}
	}
	return false
}

func isMagicConstant(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4
}

// aliasFor returns the use-import alias resolver binds to sym's FQN, if
// any (§4.9 "use-imported symbols insert their short alias").
func aliasFor(resolver *resolve.Resolver, sym *symbols.Symbol) (string, bool) {
	if resolver == nil {
		return "", false
	}
	for _, rule := range resolver.Rules() {
		if rule.Target == sym.Name || strings.HasPrefix(sym.Name, rule.Target+resolve.Separator) {
			if rule.Target == sym.Name {
				return rule.Alias, true
			}
			return rule.Alias + sym.Name[len(rule.Target):], true
		}
	}
	return "", false
}

// relativeOrFQN picks the FQN or its relative tail under resolver's
// current namespace (§4.9 "otherwise use the FQN or relative form").
func relativeOrFQN(resolver *resolve.Resolver, fqn string) string {
	if resolver == nil || resolver.Namespace() == "" {
		return fqn
	}
	prefix := resolver.Namespace() + resolve.Separator
	if strings.HasPrefix(fqn, prefix) {
		return fqn[len(prefix):]
	}
	return fqn
}

// inCurrentNamespace reports whether fqn already sits under resolver's
// current namespace (or carries no namespace segment at all), the
// condition under which a class-like name needs neither a relative
// rewrite nor a use-declaration edit.
func inCurrentNamespace(resolver *resolve.Resolver, fqn string) bool {
	if !strings.Contains(fqn, resolve.Separator) {
		return true
	}
	ns := ""
	if resolver != nil {
		ns = resolver.Namespace()
	}
	if ns == "" {
		return false
	}
	return strings.HasPrefix(fqn, ns+resolve.Separator)
}

// useDeclarationEdit builds the additionalTextEdit that imports fqn at
// the top of the namespace enclosing ctx's request offset (§4.9 "insert
// a short name plus a use-declaration edit", §8 Scenario 5).
func useDeclarationEdit(ctx *Context, fqn string) text.Edit {
	offset := 0
	if ctx != nil && ctx.Table != nil {
		offset = ctx.Table.NamespaceInsertionOffset(ctx.Offset)
	}
	var pos text.Position
	if ctx != nil && ctx.Model != nil {
		pos = ctx.Model.PositionAtOffset(offset)
	}
	return text.Edit{Start: pos, End: pos, Text: "use " + fqn + ";\n"}
}

// buildItem applies §4.9's insert-text construction rules to sym. ctx
// supplies the document state (resolver, namespace layout) needed for
// use-declaration insertion; it may be nil in contexts that never reach
// the class-like branch below.
func buildItem(sym *symbols.Symbol, resolver *resolve.Resolver, ctx *Context) Item {
	item := Item{
		Kind:          itemKindFor(sym.SurfaceKind()),
		Label:         notFQN(sym.Name),
		Detail:        sym.Name,
		Documentation: sym.Doc,
	}

	switch {
	case isMagicConstant(sym.Name):
		item.Kind = ItemMagicConstant
		item.InsertText = sym.Name

	default:
		if alias, ok := aliasFor(resolver, sym); ok {
			item.InsertText = alias
			break
		}
		if sym.Kind.ClassLike() {
			if inCurrentNamespace(resolver, sym.Name) {
				item.InsertText = relativeOrFQN(resolver, sym.Name)
				break
			}
			item.InsertText = notFQN(sym.Name)
			item.AdditionalTextEdits = []text.Edit{useDeclarationEdit(ctx, sym.Name)}
			break
		}
		if sym.Kind == symbols.Function || sym.Kind == symbols.Method {
			name := notFQN(sym.Name)
			if hasParameters(sym) {
				item.InsertText = name + "($0)"
				item.IsSnippet = true
				item.Command = triggerParameterHints
			} else {
				item.InsertText = name + "()"
			}
			break
		}
		item.InsertText = notFQN(sym.Name)
	}

	return item
}

func keywordItem(keyword string) Item {
	return Item{Kind: ItemKeyword, Label: keyword, InsertText: keyword}
}
