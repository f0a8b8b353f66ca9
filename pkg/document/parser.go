package document

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corelang/splcore/pkg/parsetree"
)

// Parser produces a parse tree for a document's full text (§6 "Parser
// interface"). Document depends only on this interface, not on
// tree-sitter.
type Parser interface {
	Parse(content []byte) *parsetree.Tree
}

// GrammarParser adapts a loaded tree-sitter Language (pkg/grammar) to
// Parser.
type GrammarParser struct {
	Language *tree_sitter.Language
}

// NewGrammarParser wraps lang as a Parser.
func NewGrammarParser(lang *tree_sitter.Language) *GrammarParser {
	return &GrammarParser{Language: lang}
}

// Parse implements Parser.
func (p *GrammarParser) Parse(content []byte) *parsetree.Tree {
	return parsetree.Parse(p.Language, content)
}
