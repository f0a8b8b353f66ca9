package completion

import (
	"strings"

	"github.com/corelang/splcore/pkg/resolve"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
)

// objectAccessCompletion offers instance members after a member-access
// operator (`obj.member`): `.` has no TypeScript analogue for PHP's `->`,
// so member_expression covers both property-access and method-call
// receivers.
type objectAccessCompletion struct{}

func (objectAccessCompletion) Name() string { return "ObjectAccessCompletion" }

func (objectAccessCompletion) CanSuggest(ctx *Context) bool {
	parent := parentNode(ctx.Cursor)
	if parent.Kind() != "member_expression" {
		return false
	}
	return !ctx.Cursor.Current().Equal(parent.ChildByFieldName("object"))
}

func (objectAccessCompletion) Suggest(ctx *Context) []Item {
	parent := parentNode(ctx.Cursor)
	obj := parent.ChildByFieldName("object")
	fqn, ok := receiverType(ctx, obj)
	if !ok {
		return nil
	}
	root := resolveSymbol(ctx.Store, fqn, symbols.Class)
	if root == nil {
		root = resolveSymbol(ctx.Store, fqn, symbols.Interface)
	}
	if root == nil {
		return nil
	}

	resolver := ctx.Resolver()
	var items []Item
	for _, m := range membersOf(ctx, root) {
		if m.Kind != symbols.Method && m.Kind != symbols.Property {
			continue
		}
		if m.Modifiers.Has(symbols.Static) {
			continue
		}
		items = append(items, buildItem(m, resolver, ctx))
	}
	return items
}

// scopedAccessCompletion offers static members after a scope-resolution
// access. The subject language's `Foo::bar` has no TypeScript operator;
// nested_type_identifier (`A.B`, normally a qualified type name) stands
// in as the closest compiled-in grammar shape for a scoped reference.
type scopedAccessCompletion struct{}

func (scopedAccessCompletion) Name() string { return "ScopedAccessCompletion" }

func (scopedAccessCompletion) CanSuggest(ctx *Context) bool {
	return parentNode(ctx.Cursor).Kind() == "nested_type_identifier"
}

func (scopedAccessCompletion) Suggest(ctx *Context) []Item {
	parent := parentNode(ctx.Cursor)
	moduleNode := parent.ChildByFieldName("module")
	if !moduleNode.Valid() {
		return nil
	}
	resolver := ctx.Resolver()
	fqn := resolver.Resolve(moduleNode.Text(), resolve.Class)
	root := resolveSymbol(ctx.Store, fqn, symbols.Class)
	if root == nil {
		root = resolveSymbol(ctx.Store, fqn, symbols.Interface)
	}
	if root == nil {
		return nil
	}

	var items []Item
	for _, m := range membersOf(ctx, root) {
		switch {
		case m.Kind == symbols.Method && m.Modifiers.Has(symbols.Static):
			items = append(items, buildItem(m, resolver, ctx))
		case m.Kind == symbols.ClassConstant:
			items = append(items, buildItem(m, resolver, ctx))
		}
	}
	return items
}

// classTypeDesignatorCompletion offers class names in a `new T(...)`
// designator position.
type classTypeDesignatorCompletion struct{}

func (classTypeDesignatorCompletion) Name() string { return "ClassTypeDesignatorCompletion" }

func (classTypeDesignatorCompletion) CanSuggest(ctx *Context) bool {
	parent := parentNode(ctx.Cursor)
	if parent.Kind() != "new_expression" {
		return false
	}
	return ctx.Cursor.Current().Equal(parent.ChildByFieldName("constructor"))
}

func (classTypeDesignatorCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	matches, _ := ctx.Store.Match(query, func(s store.Summary) bool { return s.Kind == symbols.Class }, 50)
	var items []Item
	for _, m := range matches {
		sym := resolveSymbol(ctx.Store, m.FQN, symbols.Class)
		if sym == nil || sym.Modifiers.Has(symbols.Abstract) {
			continue
		}
		items = append(items, buildItem(sym, resolver, ctx))
	}
	return items
}

// simpleVariableCompletion offers variables visible in the enclosing
// function-like scope. The subject language's `$name` sigil has no
// TypeScript counterpart, so a bare identifier stands in for "simple
// variable".
type simpleVariableCompletion struct{}

func (simpleVariableCompletion) Name() string { return "SimpleVariableCompletion" }

func (simpleVariableCompletion) CanSuggest(ctx *Context) bool {
	cur := ctx.Cursor.Current()
	if cur.Kind() != "identifier" {
		return false
	}
	if hasAncestorKind(ctx.Cursor, "type_annotation", "class_heritage", "extends_clause",
		"implements_clause", "extends_type_clause", "import_statement", "nested_type_identifier") {
		return false
	}
	switch parentNode(ctx.Cursor).Kind() {
	case "member_expression", "new_expression":
		return false
	}
	return true
}

func (simpleVariableCompletion) Suggest(ctx *Context) []Item {
	if ctx.Table == nil {
		return nil
	}
	scope := ctx.Table.Scope(ctx.Offset)
	if scope == nil {
		return nil
	}
	resolver := ctx.Resolver()
	var items []Item
	for _, child := range scope.Children {
		if child.Kind == symbols.Variable || child.Kind == symbols.Parameter {
			items = append(items, buildItem(child, resolver, ctx))
		}
	}
	return items
}

// typeDeclarationCompletion offers class/interface names inside a type
// annotation (a parameter or return type expression, §4.4).
type typeDeclarationCompletion struct{}

func (typeDeclarationCompletion) Name() string { return "TypeDeclarationCompletion" }

func (typeDeclarationCompletion) CanSuggest(ctx *Context) bool {
	return hasAncestorKind(ctx.Cursor, "type_annotation")
}

func (typeDeclarationCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	matches, _ := ctx.Store.Match(query, func(s store.Summary) bool {
		return s.Kind == symbols.Class || s.Kind == symbols.Interface
	}, 50)
	return itemsFromSummaries(ctx, matches, resolver)
}

// classBaseClauseCompletion offers class names in an `extends` clause.
type classBaseClauseCompletion struct{}

func (classBaseClauseCompletion) Name() string { return "ClassBaseClauseCompletion" }

func (classBaseClauseCompletion) CanSuggest(ctx *Context) bool {
	return hasAncestorKind(ctx.Cursor, "extends_clause")
}

func (classBaseClauseCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	matches, _ := ctx.Store.Match(query, func(s store.Summary) bool { return s.Kind == symbols.Class }, 50)
	return itemsFromSummaries(ctx, matches, resolver)
}

// interfaceClauseCompletion offers interface names in an `implements`
// clause or an interface's own `extends` clause.
type interfaceClauseCompletion struct{}

func (interfaceClauseCompletion) Name() string { return "InterfaceClauseCompletion" }

func (interfaceClauseCompletion) CanSuggest(ctx *Context) bool {
	return hasAncestorKind(ctx.Cursor, "implements_clause", "extends_type_clause")
}

func (interfaceClauseCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	matches, _ := ctx.Store.Match(query, func(s store.Summary) bool { return s.Kind == symbols.Interface }, 50)
	return itemsFromSummaries(ctx, matches, resolver)
}

// traitUseClauseCompletion would offer trait names in a trait-use list.
// The compiled-in TypeScript grammar has no trait-composition construct,
// so this strategy's gate can never fire; it stays in the chain so the
// declaration order and numbering in §4.9 is preserved verbatim.
type traitUseClauseCompletion struct{}

func (traitUseClauseCompletion) Name() string                { return "TraitUseClauseCompletion" }
func (traitUseClauseCompletion) CanSuggest(*Context) bool     { return false }
func (traitUseClauseCompletion) Suggest(*Context) []Item      { return nil }

// namespaceDefinitionCompletion offers known namespace names while
// typing a namespace-name definition.
type namespaceDefinitionCompletion struct{}

func (namespaceDefinitionCompletion) Name() string { return "NamespaceDefinitionCompletion" }

func (namespaceDefinitionCompletion) CanSuggest(ctx *Context) bool {
	parent := parentNode(ctx.Cursor)
	if parent.Kind() != "internal_module" && parent.Kind() != "module" {
		return false
	}
	return ctx.Cursor.Current().Equal(parent.ChildByFieldName("name"))
}

func (namespaceDefinitionCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	if query == "" {
		return nil
	}
	matches, _ := ctx.Store.Match(query, func(s store.Summary) bool { return s.Kind == symbols.Namespace }, 50)
	return itemsFromSummaries(ctx, matches, resolver)
}

// namespaceUseClauseCompletion offers importable names inside a
// namespace-use declaration (an import statement / import group).
type namespaceUseClauseCompletion struct{}

func (namespaceUseClauseCompletion) Name() string { return "NamespaceUseClauseCompletion" }

func (namespaceUseClauseCompletion) CanSuggest(ctx *Context) bool {
	return hasAncestorKind(ctx.Cursor, "import_statement")
}

func (namespaceUseClauseCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	if query == "" {
		return nil
	}
	matches, _ := ctx.Store.Match(query, nil, 50)
	return itemsFromSummaries(ctx, matches, resolver)
}

// methodDeclarationHeaderCompletion offers inheritable methods as
// overrides while typing a method name inside a class with a base
// clause.
type methodDeclarationHeaderCompletion struct{}

func (methodDeclarationHeaderCompletion) Name() string { return "MethodDeclarationHeaderCompletion" }

func (methodDeclarationHeaderCompletion) CanSuggest(ctx *Context) bool {
	parent := parentNode(ctx.Cursor)
	if parent.Kind() != "method_definition" {
		return false
	}
	if !ctx.Cursor.Current().Equal(parent.ChildByFieldName("name")) {
		return false
	}
	return hasAncestorKind(ctx.Cursor, "class_declaration", "abstract_class_declaration")
}

func (methodDeclarationHeaderCompletion) Suggest(ctx *Context) []Item {
	classNode := nearestAncestorNode(ctx.Cursor, "class_declaration", "abstract_class_declaration")
	if !classNode.Valid() {
		return nil
	}
	nameNode := classNode.ChildByFieldName("name")
	resolver := ctx.Resolver()
	fqn := resolver.Resolve(nameNode.Text(), resolve.Class)
	root := resolveSymbol(ctx.Store, fqn, symbols.Class)
	if root == nil {
		return nil
	}

	declared := make(map[string]bool, len(root.Children))
	for _, c := range root.Children {
		if c.Kind == symbols.Method {
			declared[strings.ToLower(notFQN(c.Name))] = true
		}
	}

	var items []Item
	for _, m := range membersOf(ctx, root) {
		if m.Kind != symbols.Method {
			continue
		}
		if declared[strings.ToLower(notFQN(m.Name))] {
			continue
		}
		items = append(items, buildItem(m, resolver, ctx))
	}
	return items
}

// declarationBodyCompletion offers only declaration keywords when the
// cursor rests on a class/interface body node itself (empty or not)
// rather than on one of its members.
type declarationBodyCompletion struct{}

func (declarationBodyCompletion) Name() string { return "DeclarationBodyCompletion" }

func (declarationBodyCompletion) CanSuggest(ctx *Context) bool {
	k := ctx.Cursor.Current().Kind()
	return k == "class_body" || k == "interface_body"
}

func (declarationBodyCompletion) Suggest(ctx *Context) []Item {
	switch ctx.Cursor.Current().Kind() {
	case "class_body":
		return keywordItems("public", "private", "protected", "static", "readonly", "abstract", "get", "set", "constructor")
	case "interface_body":
		return keywordItems("readonly")
	}
	return nil
}

// nameCompletion is the fallback: a general name-expression lookup
// across the whole workspace.
type nameCompletion struct{}

func (nameCompletion) Name() string            { return "NameCompletion" }
func (nameCompletion) CanSuggest(*Context) bool { return true }

func (nameCompletion) Suggest(ctx *Context) []Item {
	resolver := ctx.Resolver()
	query := ctx.Cursor.Current().Text()
	if query == "" {
		return nil
	}
	matches, _ := ctx.Store.Match(query, nil, 50)
	return itemsFromSummaries(ctx, matches, resolver)
}
