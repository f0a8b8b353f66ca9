package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/corelang/splcore/pkg/document"
	"github.com/corelang/splcore/pkg/grammar"
	"github.com/corelang/splcore/pkg/text"
)

func newParser(t *testing.T) document.Parser {
	t.Helper()
	lang, err := grammar.NewBuiltinLoader().Load(context.Background(), "typescript")
	if err != nil {
		t.Fatalf("Load(typescript): %v", err)
	}
	return document.NewGrammarParser(lang)
}

func TestNewParsesImmediately(t *testing.T) {
	doc := document.New("file:///a.ts", "class A {}", newParser(t))
	defer doc.Close()

	root := doc.Root()
	if !root.Valid() {
		t.Fatal("Root() invalid after New")
	}
	if doc.Pending() {
		t.Fatal("Pending() true right after New, want false")
	}
}

func TestApplyChangesSchedulesReparseAndFlushForcesIt(t *testing.T) {
	doc := document.NewWithDebounce("file:///a.ts", "class A {}", newParser(t), time.Hour)
	defer doc.Close()

	before := doc.Generation()

	doc.ApplyChanges([]text.Edit{{
		Start: text.Position{Line: 0, Character: 6},
		End:   text.Position{Line: 0, Character: 7},
		Text:  "B",
	}})
	if !doc.Pending() {
		t.Fatal("Pending() false right after ApplyChanges, want true")
	}
	if doc.Generation() != before {
		t.Fatal("Generation() changed before Flush, want unchanged until reparse completes")
	}

	doc.Flush()
	if doc.Pending() {
		t.Fatal("Pending() true after Flush, want false")
	}
	if doc.Generation() == before {
		t.Fatal("Generation() unchanged after Flush, want a new token")
	}

	root := doc.Root()
	if root.Text() != "class B {}" {
		t.Fatalf("Root().Text() = %q, want %q", root.Text(), "class B {}")
	}
}

func TestDebounceCoalescesMultipleEdits(t *testing.T) {
	doc := document.NewWithDebounce("file:///a.ts", "class A {}", newParser(t), 20*time.Millisecond)
	defer doc.Close()

	doc.ApplyChanges([]text.Edit{{
		Start: text.Position{Line: 0, Character: 6},
		End:   text.Position{Line: 0, Character: 7},
		Text:  "X",
	}})
	doc.ApplyChanges([]text.Edit{{
		Start: text.Position{Line: 0, Character: 6},
		End:   text.Position{Line: 0, Character: 7},
		Text:  "B",
	}})

	deadline := time.After(time.Second)
	for doc.Pending() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for debounced reparse")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := doc.Root().Text(); got != "class B {}" {
		t.Fatalf("Root().Text() = %q, want the final coalesced edit %q", got, "class B {}")
	}
}

func TestNodeLocationAndAnonymousName(t *testing.T) {
	doc := document.New("file:///a.ts", "class A {}", newParser(t))
	defer doc.Close()

	root := doc.Root()
	loc := doc.NodeLocation(root)
	if loc.URI != "file:///a.ts" || loc.Start != 0 {
		t.Fatalf("NodeLocation() = %+v, want URI set and Start 0", loc)
	}

	name := document.CreateAnonymousName(root)
	again := document.CreateAnonymousName(doc.Root())
	if name != again {
		t.Fatalf("CreateAnonymousName() not stable across calls: %q vs %q", name, again)
	}
}
