package parsetree

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree owns a parsed tree-sitter tree plus the source bytes it was parsed
// from. Callers must Close it once no Node derived from it is in use.
type Tree struct {
	raw     *tree_sitter.Tree
	content []byte
}

// Parse parses content under language and returns the resulting Tree, or
// nil if the parser failed to produce a tree at all (distinct from a
// partial/error-recovered tree, which Parse still returns — per §7,
// partial parse trees are accepted and extraction proceeds over the
// recognized sub-trees).
func Parse(language *tree_sitter.Language, content []byte) *Tree {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return nil
	}
	raw := parser.Parse(content, nil)
	if raw == nil {
		return nil
	}
	return &Tree{raw: raw, content: content}
}

// Root returns the tree's root Node.
func (t *Tree) Root() Node {
	if t == nil || t.raw == nil {
		return Node{}
	}
	return Wrap(t.raw.RootNode(), t.content)
}

// Close releases the underlying tree-sitter tree. Safe to call on a nil Tree.
func (t *Tree) Close() {
	if t == nil || t.raw == nil {
		return
	}
	t.raw.Close()
}
