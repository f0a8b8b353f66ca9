package parsetree

// Cursor is a stateful zipper over a parse tree (§4.8 ParseTreeCursor's
// structural half — the symbol/reference/name-resolver views it also
// specifies are layered on top in pkg/completion, whose Context pairs a
// Cursor with a document's SymbolTable and ReferenceTable).
//
// Cursor is not safe for concurrent use; Clone() produces an independent
// snapshot for callers that need to explore divergent paths.
type Cursor struct {
	spine []Node // spine[0] is the root; spine[len-1] is the current node.
}

// NewCursor creates a Cursor positioned at root.
func NewCursor(root Node) *Cursor {
	return &Cursor{spine: []Node{root}}
}

// Current returns the node the cursor is positioned at.
func (c *Cursor) Current() Node {
	if len(c.spine) == 0 {
		return Node{}
	}
	return c.spine[len(c.spine)-1]
}

// Spine returns the path from the root (index 0) to Current() (last
// index), inclusive. The returned slice must not be mutated.
func (c *Cursor) Spine() []Node {
	return c.spine
}

// Parent moves to the current node's parent. Returns false (no-op) if
// already at the root.
func (c *Cursor) Parent() bool {
	if len(c.spine) <= 1 {
		return false
	}
	c.spine = c.spine[:len(c.spine)-1]
	return true
}

// Child moves to the i'th child of the current node. Returns false
// (no-op) if there is no such child.
func (c *Cursor) Child(i int) bool {
	child := c.Current().Child(i)
	if !child.Valid() {
		return false
	}
	c.spine = append(c.spine, child)
	return true
}

// NthChild moves to the first child of the current node matching pred.
// Returns false (no-op) if none matches.
func (c *Cursor) NthChild(pred func(Node) bool) bool {
	for _, ch := range c.Current().Children() {
		if pred(ch) {
			c.spine = append(c.spine, ch)
			return true
		}
	}
	return false
}

// Ancestor walks up the spine looking for the nearest strict ancestor of
// the current node matching pred, and moves there if found. Returns false
// (no-op; spine unchanged) if none matches.
func (c *Cursor) Ancestor(pred func(Node) bool) bool {
	for i := len(c.spine) - 2; i >= 0; i-- {
		if pred(c.spine[i]) {
			c.spine = c.spine[:i+1]
			return true
		}
	}
	return false
}

// Position moves the cursor to the token at or immediately before the
// given byte offset: at each level it descends into the child whose range
// contains offset, or — if offset falls in a gap between children (e.g.
// whitespace) — the last child starting at or before offset. Returns
// false if offset precedes the root's first child entirely.
func (c *Cursor) Position(offset int) bool {
	root := c.spine[0]
	c.spine = c.spine[:1]
	cur := root

	for {
		children := cur.Children()
		if len(children) == 0 {
			break
		}
		var chosen Node
		found := false
		for _, ch := range children {
			if offset >= ch.StartByte() && offset < ch.EndByte() {
				chosen = ch
				found = true
				break
			}
			if ch.StartByte() <= offset {
				chosen = ch
				found = true
			}
		}
		if !found {
			if len(c.spine) == 1 {
				return false
			}
			break
		}
		c.spine = append(c.spine, chosen)
		cur = chosen
	}
	return true
}

// Clone returns an independent snapshot of the cursor's current spine.
func (c *Cursor) Clone() *Cursor {
	spine := make([]Node, len(c.spine))
	copy(spine, c.spine)
	return &Cursor{spine: spine}
}
