package grammar

import (
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// builtinGrammar holds a compiled-in grammar provider.
type builtinGrammar struct {
	name     string
	provider BuiltinProvider
}

// BuiltinRegistry manages the grammars compiled into the binary.
//
// The core ships one grammar out of the box: TypeScript is the closest
// compiled-in tree-sitter grammar to the dynamically-typed, class- and
// namespace-shaped "subject language" this core targets (classes,
// interfaces, visibility modifiers, namespaces). A host embedding this
// module against a different concrete language supplies its own Loader.
type BuiltinRegistry struct {
	mu       sync.RWMutex
	grammars map[string]*builtinGrammar
	loaded   map[string]*tree_sitter.Language
}

// NewBuiltinRegistry creates a new registry with all compiled-in grammars.
func NewBuiltinRegistry() *BuiltinRegistry {
	r := &BuiltinRegistry{
		grammars: make(map[string]*builtinGrammar),
		loaded:   make(map[string]*tree_sitter.Language),
	}
	registerBuiltins(r)
	return r
}

// Register adds a compiled-in grammar to the registry.
func (r *BuiltinRegistry) Register(name string, provider BuiltinProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grammars[name] = &builtinGrammar{
		name:     name,
		provider: provider,
	}
}

// Load returns the Language for a built-in grammar.
func (r *BuiltinRegistry) Load(name string) (*tree_sitter.Language, error) {
	r.mu.RLock()
	if lang, ok := r.loaded[name]; ok {
		r.mu.RUnlock()
		return lang, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if lang, ok := r.loaded[name]; ok {
		return lang, nil
	}

	g, ok := r.grammars[name]
	if !ok {
		return nil, &GrammarNotFoundError{Name: name}
	}

	ptr := g.provider()
	lang := tree_sitter.NewLanguage(ptr)
	if lang == nil {
		return nil, &GrammarNotFoundError{Name: name}
	}
	r.loaded[name] = lang
	return lang, nil
}

// Has returns true if the grammar is compiled-in.
func (r *BuiltinRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grammars[name]
	return ok
}

// Names returns the names of all compiled-in grammars.
func (r *BuiltinRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.grammars))
	for name := range r.grammars {
		names = append(names, name)
	}
	return names
}

// registerBuiltins wires up the grammars compiled into the binary.
// Each grammar Go binding exposes a function returning unsafe.Pointer.
func registerBuiltins(r *BuiltinRegistry) {
	// TypeScript exposes LanguageTypescript()/LanguageTSX() rather than a
	// plain Language(), so wrap it to satisfy BuiltinProvider.
	r.Register("typescript", func() unsafe.Pointer {
		return tree_sitter_typescript.LanguageTypescript()
	})
}
