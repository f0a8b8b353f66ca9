package store

import (
	"log"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/corelang/splcore/pkg/refs"
	"github.com/corelang/splcore/pkg/symbols"
)

// Summary is a lightweight name-index entry (§3 SymbolStore "name
// index").
type Summary struct {
	URI  string
	Kind symbols.Kind
	FQN  string
}

// Cache is the external persistence interface (§6). remove's purge path
// calls Delete; failures are logged by the caller and never affect
// in-memory state (§5 "Shared resources").
type Cache interface {
	Init() error
	Read(key string) (any, error)
	Write(key string, value any) error
	Delete(key string) error
}

// Store owns every open document's SymbolTable and ReferenceTable and
// maintains the workspace-wide indices over them (§3 SymbolStore).
// Mutations only ever happen through Add/Remove; queries never mutate
// the indices (§5 "Shared resources").
type Store struct {
	mu sync.RWMutex

	tables    map[string]*symbols.Table
	refTables map[string]*refs.Table

	// nameIndex maps a case-folded leading identifier to every summary
	// record sharing it, across all tables.
	nameIndex map[string][]Summary

	index bleve.Index

	// uriIDs is the process-wide URI->small-integer allocator (§9
	// "Global state"), used to compact URIs in index document IDs.
	uriIDs map[string]int
	nextID int
}

// New creates an empty Store with an in-memory fuzzy index.
func New() (*Store, error) {
	m, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, err
	}
	return &Store{
		tables:    make(map[string]*symbols.Table),
		refTables: make(map[string]*refs.Table),
		nameIndex: make(map[string][]Summary),
		index:     idx,
		uriIDs:    make(map[string]int),
	}, nil
}

// Close releases the store's fuzzy index.
func (s *Store) Close() error {
	return s.index.Close()
}

func (s *Store) uriID(uri string) int {
	if id, ok := s.uriIDs[uri]; ok {
		return id
	}
	id := s.nextID
	s.nextID++
	s.uriIDs[uri] = id
	return id
}

// Add replaces any existing entry for table's URI atomically and rebuilds
// that URI's summary entries (§4.6 add).
func (s *Store) Add(table *symbols.Table, refTable *refs.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uri := table.URI()
	s.uriID(uri)

	if _, existed := s.tables[uri]; existed {
		s.removeLocked(uri)
	}

	s.tables[uri] = table
	if refTable != nil {
		s.refTables[uri] = refTable
	}

	batch := s.index.NewBatch()
	table.Walk(func(sym *symbols.Symbol) {
		if sym.Kind == symbols.File || sym.Name == "" {
			return
		}
		summary := Summary{URI: uri, Kind: sym.Kind, FQN: sym.Name}
		key := leadingIdentifier(sym.Name)
		s.nameIndex[key] = append(s.nameIndex[key], summary)

		doc := searchDocument{
			FQN:      sym.Name,
			FQNEdge:  sym.Name,
			FQNNgram: sym.Name,
			Acronym:  acronym(sym.Name),
			Kind:     sym.Kind.String(),
			URI:      uri,
		}
		batch.Index(docID(uri, sym.Kind, sym.Name), doc)
	})
	return s.index.Batch(batch)
}

// Remove drops uri's table and reference table and removes its index
// entries. If purge is true and cache is non-nil, the persisted cache
// entry for uri is deleted too; a cache failure is not propagated to
// in-memory state (§7 "Cache I/O error").
func (s *Store) Remove(uri string, purge bool, cache Cache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(uri)
	if purge && cache != nil {
		if err := cache.Delete(uri); err != nil {
			log.Printf("store: purging cache entry for %s: %v", uri, err)
		}
	}
	return nil
}

func (s *Store) removeLocked(uri string) {
	table, ok := s.tables[uri]
	if !ok {
		return
	}
	delete(s.tables, uri)
	delete(s.refTables, uri)

	batch := s.index.NewBatch()
	table.Walk(func(sym *symbols.Symbol) {
		if sym.Kind == symbols.File || sym.Name == "" {
			return
		}
		batch.Delete(docID(uri, sym.Kind, sym.Name))
		key := leadingIdentifier(sym.Name)
		filtered := s.nameIndex[key][:0]
		for _, entry := range s.nameIndex[key] {
			if entry.URI != uri || entry.FQN != sym.Name || entry.Kind != sym.Kind {
				filtered = append(filtered, entry)
			}
		}
		if len(filtered) == 0 {
			delete(s.nameIndex, key)
		} else {
			s.nameIndex[key] = filtered
		}
	})
	_ = s.index.Batch(batch)
}

// Table returns the SymbolTable for uri, or nil if unknown.
func (s *Store) Table(uri string) *symbols.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[uri]
}

// ReferenceTable returns the ReferenceTable for uri, or nil if unknown.
func (s *Store) ReferenceTable(uri string) *refs.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refTables[uri]
}

func leadingIdentifier(fqn string) string {
	parts := strings.Split(fqn, "\\")
	return strings.ToLower(parts[len(parts)-1])
}

// Find performs an exact FQN lookup across every table, honoring kind's
// case-sensitivity rule (§4.6 find).
func (s *Store) Find(fqn string, kind symbols.Kind, predicate func(Summary) bool) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(leadingIdentifier(fqn))
	var out []Summary
	for _, entry := range s.nameIndex[key] {
		if entry.Kind != kind {
			continue
		}
		if !sameFQN(entry.FQN, fqn, kind) {
			continue
		}
		if predicate != nil && !predicate(entry) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func sameFQN(a, b string, kind symbols.Kind) bool {
	if kind.CaseSensitiveName() {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// Match performs a fuzzy/prefix search (§4.6 match): query is case-
// folded; a candidate matches if the full query occurs as a substring of
// its FQN, is a prefix of one of its separator-delimited segments, or
// equals its acronym (see conformsToMatch). Results are deduplicated by
// FQN.
func (s *Store) Match(query string, predicate func(Summary) bool, limit int) ([]Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folded := strings.ToLower(query)
	if folded == "" {
		return nil, false
	}

	substringQ := bleve.NewMatchQuery(folded)
	substringQ.SetField("fqn_ngram")

	prefixQ := bleve.NewMatchQuery(folded)
	prefixQ.SetField("fqn_edge")

	acronymQ := bleve.NewTermQuery(folded)
	acronymQ.SetField("acronym")

	fuzzyQ := bleve.NewFuzzyQuery(folded)
	fuzzyQ.SetField("fqn")
	fuzzyQ.SetFuzziness(1)

	disjunction := bleve.NewDisjunctionQuery(substringQ, prefixQ, acronymQ, fuzzyQ)
	req := bleve.NewSearchRequest(disjunction)
	req.Size = limit
	if req.Size <= 0 {
		req.Size = 50
	}
	req.Fields = []string{"fqn", "kind", "uri"}

	res, err := s.index.Search(req)
	if err != nil {
		return nil, false
	}

	seen := make(map[string]bool)
	var out []Summary
	for _, hit := range res.Hits {
		fqn, _ := hit.Fields["fqn"].(string)
		kindStr, _ := hit.Fields["kind"].(string)
		uri, _ := hit.Fields["uri"].(string)
		if fqn == "" || seen[fqn] {
			continue
		}
		seen[fqn] = true

		// fuzzyQ above exists only to widen bleve's candidate recall
		// (a query one edit away from a real name should still surface
		// it); it is not itself one of §4.6's three match predicates, so
		// every hit is re-checked against the literal predicate here
		// before being returned.
		if !conformsToMatch(folded, fqn) {
			continue
		}

		summary := Summary{URI: uri, Kind: kindFromString(kindStr), FQN: fqn}
		if predicate != nil && !predicate(summary) {
			continue
		}
		out = append(out, summary)
	}

	isIncomplete := uint64(len(res.Hits)) < res.Total && limit > 0
	return out, isIncomplete
}

// conformsToMatch re-applies §4.6's three literal match predicates to a
// bleve-surfaced candidate: folded occurs as a substring of fqn, folded
// is a prefix of one of fqn's separator-delimited segments, or folded
// equals fqn's acronym. folded is already case-folded.
func conformsToMatch(folded, fqn string) bool {
	lower := strings.ToLower(fqn)
	if strings.Contains(lower, folded) {
		return true
	}
	for _, seg := range strings.Split(lower, "\\") {
		if strings.HasPrefix(seg, folded) {
			return true
		}
	}
	return acronym(fqn) == folded
}

func kindFromString(s string) symbols.Kind {
	for k := symbols.File; k <= symbols.Variable; k++ {
		if k.String() == s {
			return k
		}
	}
	return symbols.Class
}
