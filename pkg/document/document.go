// Package document implements ParsedDocument (§4.2): a TextModel paired
// with a debounced, re-parseable parse tree.
package document

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/symbols"
	"github.com/corelang/splcore/pkg/text"
)

// DefaultDebounceWindow is the quiet period apply_changes waits for
// before scheduling a reparse. Keystroke-driven edits arrive far more
// often than file-watch events, so this is much shorter than a batch
// reindexer's debounce (compare pkg/code.DefaultDebounceDelay in the
// file-watching world).
const DefaultDebounceWindow = 150 * time.Millisecond

// Document is one open document: its TextModel plus the parser, the
// debounce state, and the most recently completed parse tree (§4.2,
// §5 "Suspension points").
type Document struct {
	mu sync.Mutex

	uri    string
	model  *text.Model
	parser Parser

	tree *parsetree.Tree

	// generation identifies the parse tree currently held by tree. It is
	// bumped on every reparse; callers that cache derived state (symbol
	// tables, reference tables) key their cache entry on it to detect a
	// stale snapshot without comparing tree contents.
	generation ulid.ULID

	debounceWindow time.Duration
	debounceOnce   sync.Once
	pending        bool

	closed bool
	stop   chan struct{}
}

// New creates a Document for uri with initial text, parsing it
// synchronously so the first tree is always available.
func New(uri, initial string, parser Parser) *Document {
	return NewWithDebounce(uri, initial, parser, DefaultDebounceWindow)
}

// NewWithDebounce is New with an explicit debounce window, mainly for
// tests that want to observe the pending state deterministically.
func NewWithDebounce(uri, initial string, parser Parser, debounceWindow time.Duration) *Document {
	d := &Document{
		uri:            uri,
		model:          text.NewModel(uri, initial),
		parser:         parser,
		debounceWindow: debounceWindow,
		stop:           make(chan struct{}),
	}
	d.reparseLocked()
	return d
}

// URI returns the document's URI.
func (d *Document) URI() string { return d.uri }

// Generation returns the token identifying the current parse tree.
func (d *Document) Generation() ulid.ULID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// Text returns the document's current full text.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Text()
}

// Model returns the underlying TextModel. Callers must not mutate it
// directly; go through ApplyChanges so reparse stays scheduled.
func (d *Document) Model() *text.Model {
	return d.model
}

// ApplyChanges applies changes to the TextModel (in descending-end-
// position order, per §4.1) and schedules a reparse (§4.2
// "apply_changes").
func (d *Document) ApplyChanges(changes []text.Edit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.model.ApplyEdits(changes)
	d.scheduleReparseLocked()
}

// scheduleReparseLocked arms a one-shot debounce timer if one isn't
// already pending. Reusing sync.Once per debounce cycle mirrors the
// file-watcher's queueChange/flushPending pattern: only the first edit
// in a quiet window starts the timer, and the timer always reparses
// whatever text is current when it actually fires.
func (d *Document) scheduleReparseLocked() {
	d.pending = true
	d.debounceOnce.Do(func() {
		go d.waitAndReparse()
	})
}

func (d *Document) waitAndReparse() {
	select {
	case <-time.After(d.debounceWindow):
	case <-d.stop:
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending && !d.closed {
		d.reparseLocked()
	}
	d.pending = false
	d.debounceOnce = sync.Once{}
}

// Flush forces a synchronous reparse if one is pending, and is a no-op
// otherwise (§4.2 "flush()", §5 "callers requiring post-edit semantics
// must flush").
func (d *Document) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending || d.closed {
		return
	}
	d.reparseLocked()
	d.pending = false
	d.debounceOnce = sync.Once{}
}

// Pending reports whether an edit is awaiting reparse.
func (d *Document) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Document) reparseLocked() {
	tree := d.parser.Parse([]byte(d.model.Text()))
	if d.tree != nil {
		d.tree.Close()
	}
	d.tree = tree
	d.generation = ulid.Make()
}

// Root returns the root of the most recently completed parse tree. Per
// §5's ordering guarantees, this reflects the text as of the last
// completed reparse, not necessarily the latest ApplyChanges call,
// unless the caller has called Flush first.
func (d *Document) Root() parsetree.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree == nil {
		return parsetree.Node{}
	}
	return d.tree.Root()
}

// Traverse runs v over the current parse tree (§4.2 "traverse").
func (d *Document) Traverse(v parsetree.Visitor) {
	parsetree.Traverse(d.Root(), v)
}

// NodeRange converts n's byte span to a line/character Range against
// this document's TextModel.
func (d *Document) NodeRange(n parsetree.Node) text.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	return text.Range{
		Start: d.model.PositionAtOffset(n.StartByte()),
		End:   d.model.PositionAtOffset(n.EndByte()),
	}
}

// NodeText returns n's source text.
func (d *Document) NodeText(n parsetree.Node) string { return n.Text() }

// NodeLocation builds a symbols.Location for n within this document.
func (d *Document) NodeLocation(n parsetree.Node) symbols.Location {
	return symbols.Location{URI: d.uri, Start: n.StartByte(), End: n.EndByte()}
}

// CreateAnonymousName derives a deterministic name for an anonymous
// class or closure from its source range, so its identity survives a
// reparse of otherwise-unchanged text (§4.2, §4.4).
func CreateAnonymousName(n parsetree.Node) string {
	return fmt.Sprintf("{anonymous:%d-%d}", n.StartByte(), n.EndByte())
}

// Close releases the document's parse tree and stops its debounce
// goroutine, if any is outstanding.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.stop)
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}
