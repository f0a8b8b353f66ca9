package workspace_test

import (
	"context"
	"testing"

	"github.com/corelang/splcore/pkg/document"
	"github.com/corelang/splcore/pkg/grammar"
	"github.com/corelang/splcore/pkg/symbols"
	"github.com/corelang/splcore/pkg/text"
	"github.com/corelang/splcore/pkg/workspace"
)

func newParser(t *testing.T) document.Parser {
	t.Helper()
	lang, err := grammar.NewBuiltinLoader().Load(context.Background(), "typescript")
	if err != nil {
		t.Fatalf("Load(typescript): %v", err)
	}
	return document.NewGrammarParser(lang)
}

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	w, err := workspace.New(newParser(t), nil)
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpenDocumentIndexesSymbolsImmediately(t *testing.T) {
	w := newWorkspace(t)
	if err := w.OpenDocument("file:///a.ts", "class A { f() {} }"); err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}

	infos := w.DocumentSymbols("file:///a.ts")
	var sawClass, sawMethod bool
	for _, info := range infos {
		switch {
		case info.Name == "A" && info.Kind == symbols.Class:
			sawClass = true
		case info.Name == "f" && info.Kind == symbols.Method && info.Container == "A":
			sawMethod = true
		}
	}
	if !sawClass || !sawMethod {
		t.Fatalf("infos = %+v, expected class A and method f contained in A", infos)
	}
}

func TestDocumentSymbolsOnUnknownURIIsEmpty(t *testing.T) {
	w := newWorkspace(t)
	if infos := w.DocumentSymbols("file:///missing.ts"); infos != nil {
		t.Fatalf("infos = %+v, expected nil for unknown uri", infos)
	}
}

func TestEditDocumentThenQueryObservesPostEditState(t *testing.T) {
	w := newWorkspace(t)
	src := "class A { x = 1; }"
	if err := w.OpenDocument("file:///a.ts", src); err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}

	start := len("class A { ")
	end := start + len("x")
	err := w.EditDocument("file:///a.ts", []text.Edit{
		{Start: byteToPosition(src, start), End: byteToPosition(src, end), Text: "renamed"},
	})
	if err != nil {
		t.Fatalf("EditDocument: %v", err)
	}

	infos := w.DocumentSymbols("file:///a.ts")
	var sawRenamed, sawOld bool
	for _, info := range infos {
		if info.Name == "renamed" {
			sawRenamed = true
		}
		if info.Name == "x" {
			sawOld = true
		}
	}
	if !sawRenamed {
		t.Fatalf("infos = %+v, expected a renamed property after edit+query", infos)
	}
	if sawOld {
		t.Fatalf("infos = %+v, stale symbol x should not remain", infos)
	}
}

// byteToPosition converts a byte offset into src to a text.Position by
// scanning; src here is always single-line so Character == offset.
func byteToPosition(src string, offset int) text.Position {
	line := 0
	col := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return text.Position{Line: line, Character: col}
}

func TestWorkspaceSymbolsFindsAcrossDocuments(t *testing.T) {
	w := newWorkspace(t)
	if err := w.OpenDocument("file:///a.ts", "class Greeter {}"); err != nil {
		t.Fatalf("OpenDocument a: %v", err)
	}
	if err := w.OpenDocument("file:///b.ts", "class Unrelated {}"); err != nil {
		t.Fatalf("OpenDocument b: %v", err)
	}

	infos := w.WorkspaceSymbols("gree")
	var found bool
	for _, info := range infos {
		if info.Name == "Greeter" {
			found = true
		}
	}
	if !found {
		t.Fatalf("infos = %+v, expected Greeter to match query %q", infos, "gree")
	}
}

func TestProvideCompletionsOnUnknownURIIsEmpty(t *testing.T) {
	w := newWorkspace(t)
	result := w.ProvideCompletions("file:///missing.ts", text.Position{})
	if len(result.Items) != 0 || result.IsIncomplete {
		t.Fatalf("result = %+v, expected empty result for unknown uri", result)
	}
}

func TestDiscoverIndexesWithoutOpeningALiveDocument(t *testing.T) {
	w := newWorkspace(t)
	count, err := w.Discover("file:///lib.ts", "class Lib { a() {} b() {} }")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if count == 0 {
		t.Fatalf("count = %d, expected at least the class and its two methods", count)
	}

	infos := w.WorkspaceSymbols("lib")
	if len(infos) == 0 {
		t.Fatal("expected discover to make Lib findable via workspaceSymbols")
	}
}

func TestForgetRemovesSymbolsAndReportsCounts(t *testing.T) {
	w := newWorkspace(t)
	if err := w.OpenDocument("file:///a.ts", "class A { f() {} }"); err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}

	symbolCount, _ := w.Forget("file:///a.ts")
	if symbolCount == 0 {
		t.Fatal("expected forget to report at least one removed symbol")
	}

	if infos := w.DocumentSymbols("file:///a.ts"); infos != nil {
		t.Fatalf("infos = %+v, expected nothing left after forget", infos)
	}
	if infos := w.WorkspaceSymbols("a"); len(infos) != 0 {
		for _, info := range infos {
			if info.Name == "A" {
				t.Fatalf("infos = %+v, class A should no longer be findable after forget", infos)
			}
		}
	}
}

func TestCloseDocumentKeepsWorkspaceSymbolsButStopsLiveEditing(t *testing.T) {
	w := newWorkspace(t)
	if err := w.OpenDocument("file:///a.ts", "class A {}"); err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}
	if err := w.CloseDocument("file:///a.ts"); err != nil {
		t.Fatalf("CloseDocument: %v", err)
	}

	infos := w.DocumentSymbols("file:///a.ts")
	var found bool
	for _, info := range infos {
		if info.Name == "A" {
			found = true
		}
	}
	if !found {
		t.Fatalf("infos = %+v, expected class A to remain indexed after close", infos)
	}

	// Editing a closed uri is a no-op (§7 "Edits that name unknown URIs
	// are no-ops" extends to closed documents, which are no longer live).
	if err := w.EditDocument("file:///a.ts", []text.Edit{{Text: "x"}}); err != nil {
		t.Fatalf("EditDocument on closed uri returned error: %v", err)
	}
}
