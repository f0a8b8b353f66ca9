package store_test

import (
	"context"
	"testing"

	"github.com/corelang/splcore/pkg/grammar"
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/refs"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
)

func extract(t *testing.T, uri, src string) (*symbols.Table, *refs.Table) {
	t.Helper()
	lang, err := grammar.NewBuiltinLoader().Load(context.Background(), "typescript")
	if err != nil {
		t.Fatalf("Load(typescript): %v", err)
	}
	tree := parsetree.Parse(lang, []byte(src))
	if tree == nil {
		t.Fatal("Parse returned nil tree")
	}
	defer tree.Close()
	return symbols.Extract(tree.Root(), uri), refs.Extract(tree.Root(), uri)
}

func TestAddFindExact(t *testing.T) {
	s, err := store.New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer s.Close()

	table, refTable := extract(t, "file:///a.ts", "namespace N { class Baz {} }")
	if err := s.Add(table, refTable); err != nil {
		t.Fatalf("Add(): %v", err)
	}

	got := s.Find(`N\Baz`, symbols.Class, nil)
	if len(got) != 1 {
		t.Fatalf("Find() = %d results, want 1", len(got))
	}
}

func TestMatchSubstring(t *testing.T) {
	s, err := store.New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer s.Close()

	t1, r1 := extract(t, "file:///a.ts", "namespace Foo { namespace Bar { class Baz {} } }")
	t2, r2 := extract(t, "file:///b.ts", "class qux {}")
	if err := s.Add(t1, r1); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(t2, r2); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Match("baz", nil, 10)
	var found bool
	for _, summary := range got {
		if summary.FQN == `Foo\Bar\Baz` {
			found = true
		}
	}
	if !found {
		t.Fatalf("Match(baz) = %+v, expected Foo\\Bar\\Baz", got)
	}
}

func TestMatchDoesNotSurfaceFuzzyOnlyCandidates(t *testing.T) {
	s, err := store.New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer s.Close()

	table, refTable := extract(t, "file:///a.ts", "class Bar {}")
	if err := s.Add(table, refTable); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Match("Baz", nil, 10)
	for _, summary := range got {
		if summary.FQN == "Bar" {
			t.Fatalf("Match(Baz) = %+v, Bar is only one edit away and satisfies none of the match predicates", got)
		}
	}
}

func TestRemoveDropsSummaries(t *testing.T) {
	s, err := store.New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer s.Close()

	table, refTable := extract(t, "file:///a.ts", "class Removable {}")
	if err := s.Add(table, refTable); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("file:///a.ts", false, nil); err != nil {
		t.Fatal(err)
	}

	got := s.Find("Removable", symbols.Class, nil)
	if len(got) != 0 {
		t.Fatalf("Find() after Remove = %d results, want 0", len(got))
	}
	if s.Table("file:///a.ts") != nil {
		t.Fatal("Table() should be nil after Remove")
	}
}

func TestAddReplacesExistingURIAtomically(t *testing.T) {
	s, err := store.New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer s.Close()

	t1, r1 := extract(t, "file:///a.ts", "class First {}")
	if err := s.Add(t1, r1); err != nil {
		t.Fatal(err)
	}
	t2, r2 := extract(t, "file:///a.ts", "class Second {}")
	if err := s.Add(t2, r2); err != nil {
		t.Fatal(err)
	}

	if got := s.Find("First", symbols.Class, nil); len(got) != 0 {
		t.Fatalf("First should no longer be indexed after replace, got %+v", got)
	}
	if got := s.Find("Second", symbols.Class, nil); len(got) != 1 {
		t.Fatalf("Second should be indexed after replace, got %+v", got)
	}
}
