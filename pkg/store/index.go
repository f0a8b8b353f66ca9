// Package store implements the workspace-wide SymbolStore multi-index
// (§3 SymbolStore, §4.6): a URI->table map, a case-folded name index, and
// a bleve-backed fuzzy/trigram/acronym index over every known symbol FQN.
package store

import (
	"fmt"
	"strings"
	stdunicode "unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/corelang/splcore/pkg/symbols"
)

// searchDocument is what gets indexed in bleve for one symbol. The same
// FQN text feeds three differently analyzed fields so a single query can
// be tested against prefix, substring, and acronym matching strategies
// in one pass (§4.6 match).
type searchDocument struct {
	FQN      string `json:"fqn"`
	FQNEdge  string `json:"fqn_edge"`
	FQNNgram string `json:"fqn_ngram"`
	Acronym  string `json:"acronym"`
	Kind     string `json:"kind"`
	URI      string `json:"uri"`
}

func buildIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer("fold_lower", map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicodetok.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	}); err != nil {
		return nil, fmt.Errorf("fold_lower analyzer: %w", err)
	}

	if err := im.AddCustomTokenFilter("fqn_edge_ngram", map[string]interface{}{
		"type": edgengram.Name,
		"min":  2.0,
		"max":  15.0,
	}); err != nil {
		return nil, fmt.Errorf("fqn_edge_ngram filter: %w", err)
	}
	if err := im.AddCustomAnalyzer("edge_ngram", map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicodetok.Name,
		"token_filters": []string{
			lowercase.Name,
			"fqn_edge_ngram",
		},
	}); err != nil {
		return nil, fmt.Errorf("edge_ngram analyzer: %w", err)
	}

	if err := im.AddCustomTokenFilter("fqn_ngram", map[string]interface{}{
		"type": ngram.Name,
		"min":  3.0,
		"max":  8.0,
	}); err != nil {
		return nil, fmt.Errorf("fqn_ngram filter: %w", err)
	}
	if err := im.AddCustomAnalyzer("ngram", map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicodetok.Name,
		"token_filters": []string{
			lowercase.Name,
			"fqn_ngram",
		},
	}); err != nil {
		return nil, fmt.Errorf("ngram analyzer: %w", err)
	}

	symbolMapping := bleve.NewDocumentMapping()

	fqnField := bleve.NewTextFieldMapping()
	fqnField.Analyzer = "fold_lower"
	symbolMapping.AddFieldMappingsAt("fqn", fqnField)

	edgeField := bleve.NewTextFieldMapping()
	edgeField.Analyzer = "edge_ngram"
	edgeField.IncludeInAll = false
	symbolMapping.AddFieldMappingsAt("fqn_edge", edgeField)

	ngramField := bleve.NewTextFieldMapping()
	ngramField.Analyzer = "ngram"
	ngramField.IncludeInAll = false
	symbolMapping.AddFieldMappingsAt("fqn_ngram", ngramField)

	acronymField := bleve.NewTextFieldMapping()
	acronymField.Analyzer = keyword.Name
	symbolMapping.AddFieldMappingsAt("acronym", acronymField)

	uriField := bleve.NewTextFieldMapping()
	uriField.Analyzer = keyword.Name
	symbolMapping.AddFieldMappingsAt("uri", uriField)

	im.AddDocumentMapping("symbol", symbolMapping)
	im.DefaultMapping = symbolMapping
	return im, nil
}

// acronym extracts the uppercase letters of name plus every character
// immediately following a `_` or `$`, lowercased (§4.6 match rule c).
func acronym(name string) string {
	var b strings.Builder
	special := false
	for _, r := range name {
		if r == '_' || r == '$' {
			special = true
			continue
		}
		if stdunicode.IsUpper(r) || special {
			b.WriteRune(stdunicode.ToLower(r))
		}
		special = false
	}
	return b.String()
}

func docID(uri string, kind symbols.Kind, fqn string) string {
	return fmt.Sprintf("%s\x00%s\x00%s", uri, kind, fqn)
}
