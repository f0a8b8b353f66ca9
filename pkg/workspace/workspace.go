// Package workspace implements the editor RPC surface (§6): it wires
// ParsedDocuments, the SymbolExtractor/reference extractor, and the
// workspace-wide SymbolStore together behind the eight operations an
// editor actually calls, and enforces the error-propagation policy (§7)
// at that boundary so nothing above ever observes a panic or a thrown
// error for a not-found/invalid-argument condition.
package workspace

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/corelang/splcore/pkg/completion"
	"github.com/corelang/splcore/pkg/document"
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/refs"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
	"github.com/corelang/splcore/pkg/text"
)

// SymbolInfo is the documentSymbols/workspaceSymbols response element
// (§6 "list of symbol-info (name, kind, location, container)").
type SymbolInfo struct {
	Name      string
	Kind      symbols.Kind
	Location  symbols.Location
	Container string
}

// DefaultWorkspaceSymbolLimit bounds an unqualified workspaceSymbols
// query (§6 workspaceSymbols).
const DefaultWorkspaceSymbolLimit = 200

// CompletionResult is provideCompletions' response shape (§6
// "{ items[], isIncomplete }").
type CompletionResult struct {
	Items        []completion.Item
	IsIncomplete bool
}

// cachedTable is the JSON-like value persisted for a closed document
// (§6 "Used only to persist/restore serialized symbol tables for known
// but unopened documents"); the cache's layout is opaque, so this shape
// is private to this package.
type cachedTable struct {
	URI  string          `json:"uri"`
	Root *symbols.Symbol `json:"root"`
}

// Workspace is the top-level façade a transport adapter drives (§2
// "the core exposes a small surface to an editor frontend").
type Workspace struct {
	store  *store.Store
	cache  store.Cache
	parser document.Parser

	debounceWindow int64 // nanoseconds; 0 means document.DefaultDebounceWindow

	docs    map[string]*document.Document
	indexed map[string]ulid.ULID
}

// New builds a Workspace over parser (the subject-language grammar
// loaded by the caller) and an optional cache that CloseDocument and
// Discover write symbol tables to. cache may be nil, in which case
// nothing is persisted. No operation reads a cache entry back.
func New(parser document.Parser, cache store.Cache) (*Workspace, error) {
	s, err := store.New()
	if err != nil {
		return nil, fmt.Errorf("workspace: new store: %w", err)
	}
	if cache != nil {
		if err := cache.Init(); err != nil {
			return nil, fmt.Errorf("workspace: init cache: %w", err)
		}
	}
	return &Workspace{
		store:   s,
		cache:   cache,
		parser:  parser,
		docs:    make(map[string]*document.Document),
		indexed: make(map[string]ulid.ULID),
	}, nil
}

// Close releases the underlying store's fuzzy index and every open
// document's reparse goroutine.
func (w *Workspace) Close() error {
	for _, d := range w.docs {
		d.Close()
	}
	return w.store.Close()
}

// OpenDocument registers uri as live, parses text immediately, and
// indexes it for documentSymbols/workspaceSymbols/provideCompletions.
func (w *Workspace) OpenDocument(uri, text string) error {
	d := document.New(uri, text, w.parser)
	w.docs[uri] = d
	w.reindex(uri, d)
	return nil
}

// CloseDocument stops uri's debounce machinery and, if a cache is
// configured, persists its last-known symbol table. The entry is only
// written: Discover always reparses and does not restore tables from the
// cache. The store's in-memory entry for uri
// is left intact — closing only means the editor no longer owns live
// edits for it, not that the workspace forgets it (§6 forget is the
// explicit removal operation).
func (w *Workspace) CloseDocument(uri string) error {
	d, ok := w.docs[uri]
	if !ok {
		return nil
	}
	d.Flush()
	w.reindex(uri, d)
	if w.cache != nil {
		if table := w.store.Table(uri); table != nil {
			_ = w.cache.Write(uri, cachedTable{URI: uri, Root: table.Root})
		}
	}
	d.Close()
	delete(w.docs, uri)
	delete(w.indexed, uri)
	return nil
}

// EditDocument applies contentChanges to uri's live document. Per §5,
// the resulting reparse is debounced; ensureFresh flushes it the next
// time any query needs up-to-date state. Editing an unknown uri is a
// no-op (§7 "Edits that name unknown URIs are no-ops").
func (w *Workspace) EditDocument(uri string, changes []text.Edit) error {
	d, ok := w.docs[uri]
	if !ok {
		return nil
	}
	d.ApplyChanges(changes)
	return nil
}

// ensureFresh flushes uri's pending reparse (if any) and reindexes the
// store only when the document's generation has moved past what was
// last indexed, so repeated queries between edits do no redundant work
// (§5 "at most one reparse per quiet window").
func (w *Workspace) ensureFresh(uri string) *document.Document {
	d, ok := w.docs[uri]
	if !ok {
		return nil
	}
	d.Flush()
	if w.indexed[uri] != d.Generation() {
		w.reindex(uri, d)
	}
	return d
}

func (w *Workspace) reindex(uri string, d *document.Document) {
	table := symbols.Extract(d.Root(), uri)
	refTable := refs.Extract(d.Root(), uri)
	_ = w.store.Add(table, refTable)
	w.indexed[uri] = d.Generation()
}

// DocumentSymbols lists every declared symbol in uri, container-first
// (§6 documentSymbols). An unknown uri yields an empty list rather than
// an error (§7 "Not-found... returns an empty or sentinel result").
func (w *Workspace) DocumentSymbols(uri string) []SymbolInfo {
	w.ensureFresh(uri)
	table := w.store.Table(uri)
	if table == nil {
		return nil
	}
	var out []SymbolInfo
	table.Walk(func(s *symbols.Symbol) {
		if s.Kind == symbols.File {
			return
		}
		out = append(out, SymbolInfo{Name: s.Name, Kind: s.Kind, Location: s.Location, Container: s.Scope})
	})
	return out
}

// WorkspaceSymbols runs a fuzzy/prefix/acronym query across every
// indexed document (§6 workspaceSymbols, §4.6 match).
func (w *Workspace) WorkspaceSymbols(query string) []SymbolInfo {
	for uri := range w.docs {
		w.ensureFresh(uri)
	}
	matches, _ := w.store.Match(query, nil, DefaultWorkspaceSymbolLimit)
	out := make([]SymbolInfo, 0, len(matches))
	for _, m := range matches {
		table := w.store.Table(m.URI)
		if table == nil {
			continue
		}
		sym := table.FindFQN(m.FQN, m.Kind)
		if sym == nil {
			continue
		}
		out = append(out, SymbolInfo{Name: sym.Name, Kind: sym.Kind, Location: sym.Location, Container: sym.Scope})
	}
	return out
}

// ProvideCompletions resolves the cursor at position in uri and runs
// CompletionDispatcher over it (§6 provideCompletions, §4.9). An unknown
// uri yields an empty, complete result; an out-of-range position is
// clamped to the document by OffsetAtPosition.
func (w *Workspace) ProvideCompletions(uri string, pos text.Position) CompletionResult {
	d := w.ensureFresh(uri)
	if d == nil {
		return CompletionResult{}
	}
	offset := d.Model().OffsetAtPosition(pos)
	root := d.Root()
	if !root.Valid() {
		return CompletionResult{}
	}
	cursor := parsetree.NewCursor(root)
	cursor.Position(offset)

	ctx := &completion.Context{
		Cursor:   cursor,
		Offset:   offset,
		Table:    w.store.Table(uri),
		RefTable: w.store.ReferenceTable(uri),
		Store:    w.store,
		Model:    d.Model(),
	}
	result := completion.NewDispatcher().Dispatch(ctx)
	return CompletionResult{Items: result.Items, IsIncomplete: result.IsIncomplete}
}

// Discover indexes a file the editor has not opened (e.g. a workspace
// scan) and reports how many declared symbols it contributed (§6
// discover). It never registers a live Document, so no debounce
// machinery is spun up for it.
func (w *Workspace) Discover(uri, text string) (int, error) {
	tree := w.parser.Parse([]byte(text))
	if tree == nil {
		return 0, fmt.Errorf("workspace: parse failed for %s", uri)
	}
	defer tree.Close()

	table := symbols.Extract(tree.Root(), uri)
	refTable := refs.Extract(tree.Root(), uri)
	if err := w.store.Add(table, refTable); err != nil {
		return 0, fmt.Errorf("workspace: index %s: %w", uri, err)
	}

	count := 0
	table.Walk(func(s *symbols.Symbol) {
		if s.Kind != symbols.File {
			count++
		}
	})

	if w.cache != nil {
		_ = w.cache.Write(uri, cachedTable{URI: uri, Root: table.Root})
	}
	return count, nil
}

// Forget removes uri from the workspace entirely, purging its cache
// entry if one exists, and reports how many symbols and references it
// held (§6 forget).
func (w *Workspace) Forget(uri string) (symbolCount, referenceCount int) {
	table := w.store.Table(uri)
	if table != nil {
		table.Walk(func(s *symbols.Symbol) {
			if s.Kind != symbols.File {
				symbolCount++
			}
		})
	}
	if refTable := w.store.ReferenceTable(uri); refTable != nil {
		refTable.Walk(func(refs.Reference) { referenceCount++ })
	}

	_ = w.store.Remove(uri, true, w.cache)

	if d, ok := w.docs[uri]; ok {
		d.Close()
		delete(w.docs, uri)
		delete(w.indexed, uri)
	}
	return symbolCount, referenceCount
}
