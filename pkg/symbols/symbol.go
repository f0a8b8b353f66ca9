package symbols

// Location pins a Symbol or Reference to a byte range within a document
// (§3: "source location (uri + byte range)").
type Location struct {
	URI   string
	Start int
	End   int
}

// Contains reports whether offset falls within [Start, End).
func (l Location) Contains(offset int) bool {
	return offset >= l.Start && offset < l.End
}

// Stub is an unresolved reference to another class/interface/trait symbol
// recorded on a class-like Symbol's Associated list (an extends,
// implements, or uses-trait clause). Stubs are resolved to concrete
// symbols at query time by the store, never held as owning pointers
// (§9 "cross-table links are (kind, fqn) stubs").
type Stub struct {
	Kind Kind
	Name string // FQN, resolved via NameResolver at the declaration site.
}

// Symbol is one mined declaration (§3 Symbol).
type Symbol struct {
	Kind      Kind
	Name      string // FQN where Kind allows one, short name otherwise.
	Modifiers Modifier
	Location  Location
	Scope     string // FQN of the nearest enclosing named ancestor.
	Doc       string
	Type      string // declared type expression, if any.
	Value     string // literal value, if any.
	Children  []*Symbol
	Associated []Stub
}

// SurfaceKind returns the kind a caller-facing view should report: a
// Method named ConstructorName surfaces as Constructor, though its
// storage Kind remains Method (§4.4).
func (s *Symbol) SurfaceKind() Kind {
	if s.Kind == Method && s.Name == ConstructorName {
		return Constructor
	}
	return s.Kind
}

// AddChild appends child and sets child.Scope to s.Name (or s.Scope's
// convention for a File root, whose Name is typically empty).
func (s *Symbol) AddChild(child *Symbol) {
	child.Scope = s.Name
	s.Children = append(s.Children, child)
}
