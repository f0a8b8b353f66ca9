package grammar

import (
	"context"
	"testing"
)

func TestBuiltinLoaderLoadsTypeScript(t *testing.T) {
	l := NewBuiltinLoader()

	lang, err := l.Load(context.Background(), "typescript")
	if err != nil {
		t.Fatalf("Load(typescript): %v", err)
	}
	if lang == nil {
		t.Fatal("Load(typescript) returned nil language")
	}

	// Second load should hit the cache and return the same pointer.
	again, err := l.Load(context.Background(), "typescript")
	if err != nil {
		t.Fatalf("second Load(typescript): %v", err)
	}
	if again != lang {
		t.Fatal("expected cached language instance on second load")
	}
}

func TestBuiltinLoaderUnknownGrammar(t *testing.T) {
	l := NewBuiltinLoader()

	_, err := l.Load(context.Background(), "cobol")
	if err == nil {
		t.Fatal("expected error for unknown grammar")
	}
	var notFound *GrammarNotFoundError
	if !asGrammarNotFound(err, &notFound) {
		t.Fatalf("expected GrammarNotFoundError, got %T: %v", err, err)
	}
}

func TestBuiltinLoaderAvailable(t *testing.T) {
	l := NewBuiltinLoader()
	names := l.Available()
	found := false
	for _, n := range names {
		if n == "typescript" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected typescript in Available(), got %v", names)
	}
}

// asGrammarNotFound is a small errors.As wrapper kept local to the test so
// the test file has no import beyond "context"/"testing" plus this package.
func asGrammarNotFound(err error, target **GrammarNotFoundError) bool {
	if e, ok := err.(*GrammarNotFoundError); ok {
		*target = e
		return true
	}
	return false
}
