// Package grammar provides access to the tree-sitter grammar(s) the core
// uses to obtain Token/Phrase trees for the subject language.
//
// The core itself treats the subject-language tokenizer/parser as an
// external collaborator (see the top-level spec): a Loader just hands back
// a compiled tree-sitter Language for a name, and pkg/document wraps the
// resulting parse with the Token/Phrase view from pkg/parsetree.
package grammar

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Loader provides access to tree-sitter language grammars by name.
type Loader interface {
	// Load returns the Language for the given name.
	Load(ctx context.Context, name string) (*tree_sitter.Language, error)

	// Available returns all grammar names this loader can produce.
	Available() []string
}

// BuiltinProvider is a function that returns an unsafe.Pointer to a
// TSLanguage. This is the signature exposed by tree-sitter grammar Go
// bindings.
type BuiltinProvider func() unsafe.Pointer

// GrammarNotFoundError is returned when a grammar is not available.
type GrammarNotFoundError struct {
	Name string
}

func (e *GrammarNotFoundError) Error() string {
	return fmt.Sprintf("grammar %q not found", e.Name)
}

// BuiltinLoader loads grammars compiled into the binary via CGO. It is the
// only Loader implementation this module ships — see BuiltinRegistry for
// why only "typescript" is registered by default.
type BuiltinLoader struct {
	registry *BuiltinRegistry

	mu    sync.RWMutex
	cache map[string]*tree_sitter.Language
}

// NewBuiltinLoader creates a Loader backed by the compiled-in grammar registry.
func NewBuiltinLoader() *BuiltinLoader {
	return &BuiltinLoader{
		registry: NewBuiltinRegistry(),
		cache:    make(map[string]*tree_sitter.Language),
	}
}

// Load returns the Language for the given name. ctx is accepted to satisfy
// Loader and to leave room for future implementations that load off the
// local filesystem or network; the built-in loader never blocks on it.
func (l *BuiltinLoader) Load(ctx context.Context, name string) (*tree_sitter.Language, error) {
	l.mu.RLock()
	if lang, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return lang, nil
	}
	l.mu.RUnlock()

	lang, err := l.registry.Load(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = lang
	l.mu.Unlock()
	return lang, nil
}

// Available returns all compiled-in grammar names.
func (l *BuiltinLoader) Available() []string {
	return l.registry.Names()
}
