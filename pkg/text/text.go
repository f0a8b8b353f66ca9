// Package text provides the character buffer + line-offset index that
// backs every open document, and the positional edit protocol that keeps
// it consistent under incremental changes.
package text

import "sort"

// Position is a zero-based (line, character) pair. Character is a byte
// offset within the line, matching the byte-oriented ranges tree-sitter
// (pkg/parsetree's underlying parser) reports for Token/Phrase nodes.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) span of Positions.
type Range struct {
	Start Position
	End   Position
}

// Model is the mutable character buffer plus a sorted line-start index for
// one document's text. Model is not safe for concurrent use; callers that
// need concurrent access (pkg/document) serialize around it.
type Model struct {
	uri         string
	text        []byte
	lineOffsets []int // lineOffsets[0] == 0; invariant maintained by rebuild
}

// NewModel creates a Model for uri with the given initial text.
func NewModel(uri, initial string) *Model {
	m := &Model{uri: uri}
	m.text = []byte(initial)
	m.rebuildLineOffsets()
	return m
}

// URI returns the document URI this Model was created with. Immutable for
// the Model's lifetime.
func (m *Model) URI() string { return m.uri }

// Text returns the current full text.
func (m *Model) Text() string { return string(m.text) }

// Len returns the current text length in bytes.
func (m *Model) Len() int { return len(m.text) }

// LineCount returns the number of lines (always >= 1, even for an empty
// document: an empty document has exactly one, empty, line).
func (m *Model) LineCount() int { return len(m.lineOffsets) }

// rebuildLineOffsets recomputes the line-start index from m.text by a
// fresh scan. Recognizes LF, CR, and CRLF (CRLF counts once) as line
// terminators, matching the invariant that lineOffsets[0] == 0 and every
// subsequent entry is the offset immediately after the nearest preceding
// terminator.
func (m *Model) rebuildLineOffsets() {
	offsets := []int{0}
	text := m.text
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			offsets = append(offsets, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			offsets = append(offsets, i+1)
		}
	}
	m.lineOffsets = offsets
}

// ApplyEdit replaces [offset(start), offset(end)) with newText, then
// rebuilds the line-offset index. A no-op edit (start == end, newText =="")
// is idempotent: the buffer and line offsets are left bitwise identical.
func (m *Model) ApplyEdit(start, end Position, newText string) {
	if start == end && newText == "" {
		return
	}

	startOffset := m.OffsetAtPosition(start)
	endOffset := m.OffsetAtPosition(end)
	if endOffset < startOffset {
		startOffset, endOffset = endOffset, startOffset
	}

	replaced := make([]byte, 0, len(m.text)-(endOffset-startOffset)+len(newText))
	replaced = append(replaced, m.text[:startOffset]...)
	replaced = append(replaced, newText...)
	replaced = append(replaced, m.text[endOffset:]...)
	m.text = replaced

	m.rebuildLineOffsets()
}

// Edit is one positional replacement within a single editDocument request.
type Edit struct {
	Start Position
	End   Position
	Text  string
}

// ApplyEdits applies multiple edits from one request. Per §4.1, edits are
// sorted by descending end position (later ranges first) before applying,
// so that earlier ranges' offsets remain valid as later ones are applied.
func (m *Model) ApplyEdits(edits []Edit) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return positionLess(sorted[j].End, sorted[i].End) // descending
	})
	for _, e := range sorted {
		m.ApplyEdit(e.Start, e.End, e.Text)
	}
}

func positionLess(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// PositionAtOffset returns the (line, character) for a byte offset via
// binary search over the line-start index: line is the rank of the
// greatest offset <= o, and character is o minus that line's start.
func (m *Model) PositionAtOffset(o int) Position {
	if o < 0 {
		o = 0
	}
	if o > len(m.text) {
		o = len(m.text)
	}
	// sort.Search finds the first index where lineOffsets[i] > o; the rank
	// we want is one less than that.
	idx := sort.Search(len(m.lineOffsets), func(i int) bool {
		return m.lineOffsets[i] > o
	})
	rank := idx - 1
	if rank < 0 {
		rank = 0
	}
	return Position{Line: rank, Character: o - m.lineOffsets[rank]}
}

// OffsetAtPosition clamps p.Line to [0, LineCount()) and returns
// min(lineOffsets[p.Line] + p.Character, len(text)).
func (m *Model) OffsetAtPosition(p Position) int {
	line := p.Line
	if line < 0 {
		line = 0
	}
	if line >= len(m.lineOffsets) {
		line = len(m.lineOffsets) - 1
	}
	character := p.Character
	if character < 0 {
		character = 0
	}
	offset := m.lineOffsets[line] + character
	if offset > len(m.text) {
		offset = len(m.text)
	}
	return offset
}

// isIdentifierStart reports whether b can begin a subject-language
// identifier: a letter, underscore, or any byte with its high bit set
// (UTF-8 continuation/lead bytes for non-ASCII identifier characters).
func isIdentifierStart(b byte) bool {
	return b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isIdentifierPart reports whether b may continue an identifier begun by
// isIdentifierStart: anything isIdentifierStart accepts, plus digits.
func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || (b >= '0' && b <= '9')
}

// WordAtOffset returns the maximal [a, b) byte range around o that matches
// the subject language's identifier grammar, or (o, o) if o is not inside
// or adjacent to an identifier.
func (m *Model) WordAtOffset(o int) (int, int) {
	if o < 0 || o > len(m.text) {
		return o, o
	}
	text := m.text

	// If we're sitting just after an identifier (cursor position, not on a
	// character), treat the previous byte as the anchor.
	anchor := o
	if anchor >= len(text) || !isIdentifierPart(text[anchor]) {
		if anchor > 0 && isIdentifierPart(text[anchor-1]) {
			anchor--
		} else {
			return o, o
		}
	}
	if !isIdentifierStart(text[anchor]) && !isIdentifierPart(text[anchor]) {
		return o, o
	}

	start := anchor
	for start > 0 && isIdentifierPart(text[start-1]) {
		start--
	}
	if !isIdentifierStart(text[start]) {
		return o, o
	}

	end := anchor + 1
	for end < len(text) && isIdentifierPart(text[end]) {
		end++
	}
	return start, end
}
