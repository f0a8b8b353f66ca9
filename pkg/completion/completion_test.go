package completion_test

import (
	"context"
	"testing"

	"github.com/corelang/splcore/pkg/completion"
	"github.com/corelang/splcore/pkg/grammar"
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/refs"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
)

func parse(t *testing.T, src string) *parsetree.Tree {
	t.Helper()
	lang, err := grammar.NewBuiltinLoader().Load(context.Background(), "typescript")
	if err != nil {
		t.Fatalf("Load(typescript): %v", err)
	}
	tree := parsetree.Parse(lang, []byte(src))
	if tree == nil {
		t.Fatal("Parse returned nil tree")
	}
	return tree
}

// findFirst returns the first node (depth-first) whose Kind matches.
func findFirst(n parsetree.Node, kind string) parsetree.Node {
	if n.Kind() == kind {
		return n
	}
	for _, c := range n.Children() {
		if found := findFirst(c, kind); found.Valid() {
			return found
		}
	}
	return parsetree.Node{}
}

// cursorAt builds a Cursor over root whose spine descends exactly down
// to target, regardless of whether target itself has children.
func cursorAt(root, target parsetree.Node) *parsetree.Cursor {
	cur := parsetree.NewCursor(root)
	var descend func(n parsetree.Node) bool
	descend = func(n parsetree.Node) bool {
		if n.Equal(target) {
			return true
		}
		for _, c := range n.Children() {
			if target.StartByte() >= c.StartByte() && target.EndByte() <= c.EndByte() {
				if cur.NthChild(func(x parsetree.Node) bool { return x.Equal(c) }) {
					if descend(c) {
						return true
					}
					cur.Parent()
				}
			}
		}
		return false
	}
	descend(root)
	return cur
}

func setup(t *testing.T, src string) (*parsetree.Tree, *completion.Context, *store.Store) {
	t.Helper()
	tree := parse(t, src)
	table := symbols.Extract(tree.Root(), "file:///a.ts")
	refTable := refs.Extract(tree.Root(), "file:///a.ts")
	s, err := store.New()
	if err != nil {
		t.Fatalf("store.New(): %v", err)
	}
	if err := s.Add(table, refTable); err != nil {
		t.Fatalf("Add(): %v", err)
	}
	t.Cleanup(func() { s.Close(); tree.Close() })
	return tree, &completion.Context{Table: table, RefTable: refTable, Store: s}, s
}

func TestObjectAccessCompletionOffersInheritedMembers(t *testing.T) {
	src := "class Animal { move() {} }\nclass Dog extends Animal { bark() { this.move } }"
	tree, ctx, _ := setup(t, src)

	member := findFirst(tree.Root(), "member_expression")
	if !member.Valid() {
		t.Fatal("expected a member_expression in source")
	}
	prop := member.ChildByFieldName("property")
	if !prop.Valid() {
		t.Fatal("expected member_expression to have a property field")
	}
	ctx.Cursor = cursorAt(tree.Root(), prop)
	ctx.Offset = prop.StartByte()

	result := completion.NewDispatcher().Dispatch(ctx)

	var sawMove, sawBark bool
	for _, item := range result.Items {
		switch item.Label {
		case "move":
			sawMove = true
		case "bark":
			sawBark = true
		}
	}
	if !sawMove {
		t.Fatalf("items = %+v, expected inherited method move", result.Items)
	}
	if !sawBark {
		t.Fatalf("items = %+v, expected own method bark", result.Items)
	}
}

func TestClassTypeDesignatorCompletionMatchesNewExpression(t *testing.T) {
	src := "class Doggo {}\nlet x = new Doggo();"
	tree, ctx, _ := setup(t, src)

	newExpr := findFirst(tree.Root(), "new_expression")
	if !newExpr.Valid() {
		t.Fatal("expected a new_expression")
	}
	ctor := newExpr.ChildByFieldName("constructor")
	ctx.Cursor = cursorAt(tree.Root(), ctor)
	ctx.Offset = ctor.StartByte()

	result := completion.NewDispatcher().Dispatch(ctx)

	var found bool
	for _, item := range result.Items {
		if item.Label == "Doggo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("items = %+v, expected Doggo", result.Items)
	}
}

func TestMethodDeclarationHeaderCompletionOffersOverrides(t *testing.T) {
	src := "class Animal { move() {} }\nclass Dog extends Animal { run() {} }"
	tree, ctx, _ := setup(t, src)

	methods := []parsetree.Node{}
	var collect func(n parsetree.Node)
	collect = func(n parsetree.Node) {
		if n.Kind() == "method_definition" {
			methods = append(methods, n)
		}
		for _, c := range n.Children() {
			collect(c)
		}
	}
	collect(tree.Root())

	var runMethod parsetree.Node
	for _, m := range methods {
		if name := m.ChildByFieldName("name"); name.Valid() && name.Text() == "run" {
			runMethod = m
		}
	}
	if !runMethod.Valid() {
		t.Fatal("expected to find method run")
	}
	nameNode := runMethod.ChildByFieldName("name")
	ctx.Cursor = cursorAt(tree.Root(), nameNode)
	ctx.Offset = nameNode.StartByte()

	result := completion.NewDispatcher().Dispatch(ctx)

	var sawMove bool
	for _, item := range result.Items {
		if item.Label == "move" {
			sawMove = true
		}
		if item.Label == "run" {
			t.Fatalf("items = %+v, run should not offer itself as an override", result.Items)
		}
	}
	if !sawMove {
		t.Fatalf("items = %+v, expected inherited move as an overridable method", result.Items)
	}
}

func TestDeclarationBodyCompletionOffersOnlyKeywords(t *testing.T) {
	src := "class Empty {}"
	tree, ctx, _ := setup(t, src)

	body := findFirst(tree.Root(), "class_body")
	if !body.Valid() {
		t.Fatal("expected a class_body")
	}
	ctx.Cursor = cursorAt(tree.Root(), body)
	ctx.Offset = body.StartByte()

	result := completion.NewDispatcher().Dispatch(ctx)
	if len(result.Items) == 0 {
		t.Fatal("expected keyword items")
	}
	for _, item := range result.Items {
		if item.Kind != completion.ItemKeyword {
			t.Fatalf("item %+v is not a keyword", item)
		}
	}
}

func TestClassTypeNameCompletionInsertsUseDeclarationForUnimportedSymbol(t *testing.T) {
	src := "namespace Other { class T {} }\nnamespace N { function f(x: T) {} }"
	tree, ctx, _ := setup(t, src)

	var typeRef parsetree.Node
	var collect func(n parsetree.Node)
	collect = func(n parsetree.Node) {
		if n.Kind() == "type_annotation" {
			for _, c := range n.Children() {
				if c.Kind() == "type_identifier" {
					typeRef = c
				}
			}
		}
		for _, c := range n.Children() {
			collect(c)
		}
	}
	collect(tree.Root())
	if !typeRef.Valid() {
		t.Fatal("expected a type_identifier inside a type_annotation")
	}

	ctx.Cursor = cursorAt(tree.Root(), typeRef)
	ctx.Offset = typeRef.StartByte()

	result := completion.NewDispatcher().Dispatch(ctx)

	var item *completion.Item
	for i := range result.Items {
		if result.Items[i].Label == "T" {
			item = &result.Items[i]
		}
	}
	if item == nil {
		t.Fatalf("items = %+v, expected a completion item for T", result.Items)
	}
	if item.InsertText != "T" {
		t.Fatalf("item.InsertText = %q, want short name T", item.InsertText)
	}
	if len(item.AdditionalTextEdits) != 1 {
		t.Fatalf("item.AdditionalTextEdits = %+v, want exactly one use-declaration edit", item.AdditionalTextEdits)
	}
	if want := "use Other\\T;\n"; item.AdditionalTextEdits[0].Text != want {
		t.Fatalf("edit text = %q, want %q", item.AdditionalTextEdits[0].Text, want)
	}
}

func TestNameCompletionFallback(t *testing.T) {
	src := "class Greeter {}\nclass Gremlin {}"
	tree, ctx, _ := setup(t, src)

	ident := findFirst(tree.Root(), "type_identifier")
	if !ident.Valid() {
		t.Fatal("expected a type_identifier")
	}
	ctx.Cursor = cursorAt(tree.Root(), ident)
	ctx.Offset = ident.StartByte()

	result := completion.NewDispatcher().Dispatch(ctx)
	if len(result.Items) == 0 {
		t.Fatalf("expected name-completion fallback matches for query %q", ident.Text())
	}
}
