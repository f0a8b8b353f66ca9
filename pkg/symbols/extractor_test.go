package symbols_test

import (
	"context"
	"testing"

	"github.com/corelang/splcore/pkg/grammar"
	"github.com/corelang/splcore/pkg/parsetree"
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

func TestExtractClassAndMethod(t *testing.T) {
	tree := parse(t, "class A { f() {} }")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")

	if len(table.Root.Children) != 1 {
		t.Fatalf("expected 1 top-level symbol, got %d", len(table.Root.Children))
	}
	class := table.Root.Children[0]
	if class.Kind != symbols.Class || class.Name != "A" {
		t.Fatalf("got %v %q, want Class A", class.Kind, class.Name)
	}
	if len(class.Children) != 1 {
		t.Fatalf("expected 1 member, got %d", len(class.Children))
	}
	method := class.Children[0]
	if method.Kind != symbols.Method || method.Name != "f" {
		t.Fatalf("got %v %q, want Method f", method.Kind, method.Name)
	}
	if method.Scope != "A" {
		t.Fatalf("method scope = %q, want A", method.Scope)
	}
}

func TestExtractConstructorSurfaceKind(t *testing.T) {
	tree := parse(t, "class A { constructor() {} }")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	method := table.Root.Children[0].Children[0]
	if method.Kind != symbols.Method {
		t.Fatalf("storage kind = %v, want Method", method.Kind)
	}
	if method.SurfaceKind() != symbols.Constructor {
		t.Fatalf("surface kind = %v, want Constructor", method.SurfaceKind())
	}
}

func TestExtractVariableFromDeclaration(t *testing.T) {
	tree := parse(t, "function g() { let hello = 1; }")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	fn := table.Root.Children[0]
	if fn.Kind != symbols.Function || fn.Name != "g" {
		t.Fatalf("got %v %q, want Function g", fn.Kind, fn.Name)
	}

	var found bool
	for _, c := range fn.Children {
		if c.Kind == symbols.Variable && c.Name == "hello" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a Variable symbol named hello in function g")
	}
}

func TestExtractClassHeritage(t *testing.T) {
	tree := parse(t, "class B extends A implements I {}")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	class := table.Root.Children[0]
	if len(class.Associated) != 2 {
		t.Fatalf("expected 2 associated stubs, got %d", len(class.Associated))
	}
	if class.Associated[0].Kind != symbols.Class || class.Associated[0].Name != "A" {
		t.Fatalf("base stub = %+v, want Class A", class.Associated[0])
	}
	if class.Associated[1].Kind != symbols.Interface || class.Associated[1].Name != "I" {
		t.Fatalf("interface stub = %+v, want Interface I", class.Associated[1])
	}
}

func TestExtractNamespaceAndScopedName(t *testing.T) {
	tree := parse(t, "namespace N { class A {} }")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	ns := table.Root.Children[0]
	if ns.Kind != symbols.Namespace || ns.Name != "N" {
		t.Fatalf("got %v %q, want Namespace N", ns.Kind, ns.Name)
	}
	class := ns.Children[0]
	if class.Name != `N\A` {
		t.Fatalf("class name = %q, want N\\A", class.Name)
	}
}

func TestNamespaceInsertionOffsetPointsAtNamespaceBodyTop(t *testing.T) {
	src := "namespace N { class A {} }"
	tree := parse(t, src)
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	class := table.Root.Children[0].Children[0]

	want := len("namespace N {")
	if got := table.NamespaceInsertionOffset(class.Location.Start); got != want {
		t.Fatalf("NamespaceInsertionOffset = %d, want %d (top of namespace N's body)", got, want)
	}
}

func TestNamespaceInsertionOffsetOutsideAnyNamespaceIsFileTop(t *testing.T) {
	tree := parse(t, "class A {}")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	if got := table.NamespaceInsertionOffset(table.Root.Children[0].Location.Start); got != 0 {
		t.Fatalf("NamespaceInsertionOffset = %d, want 0 (top of file, no enclosing namespace)", got)
	}
}

func TestExtractClassConstantVsProperty(t *testing.T) {
	tree := parse(t, "class A { static readonly MAX = 10; count = 0; }")
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	class := table.Root.Children[0]
	if len(class.Children) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(class.Children))
	}
	if class.Children[0].Kind != symbols.ClassConstant || class.Children[0].Name != "MAX" {
		t.Fatalf("got %v %q, want ClassConstant MAX", class.Children[0].Kind, class.Children[0].Name)
	}
	if class.Children[1].Kind != symbols.Property || class.Children[1].Name != "count" {
		t.Fatalf("got %v %q, want Property count", class.Children[1].Kind, class.Children[1].Name)
	}
}

func TestDocCommentAttachesToNextDeclaration(t *testing.T) {
	src := "/**\n * does a thing\n */\nfunction f() {}"
	tree := parse(t, src)
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	fn := table.Root.Children[0]
	if fn.Doc == "" {
		t.Fatal("expected doc comment to attach to function f")
	}
}

func TestSymbolAtAndScope(t *testing.T) {
	src := "class A { f() {} }"
	tree := parse(t, src)
	defer tree.Close()

	table := symbols.Extract(tree.Root(), "file:///a.ts")
	// Offset inside "f() {}" body.
	offset := len("class A { f() {")
	if got := table.SymbolAt(offset); got.Kind != symbols.Method || got.Name != "f" {
		t.Fatalf("SymbolAt(%d) = %v %q, want Method f", offset, got.Kind, got.Name)
	}
	sym := table.Scope(offset)
	if sym.Kind != symbols.Method {
		t.Fatalf("Scope(%d) = %v, want Method", offset, sym.Kind)
	}
}
