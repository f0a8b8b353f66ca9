package parsetree

// Visitor implements a depth-first pre/post-order walk over a parse tree
// (§4.2 ParsedDocument.traverse, §9 "Visitor control flow"). Enter runs on
// the way down and returns whether to descend into the node's children;
// Leave runs on the way back up for every node Enter was called on
// (regardless of the descend? answer). Halted is polled after every Enter
// and Leave call so a visitor can short-circuit a traversal early (the
// spec's "halt_traverse").
type Visitor interface {
	Enter(n Node, spine []Node) (descend bool)
	Leave(n Node, spine []Node)
	Halted() bool
}

// Traverse walks root depth-first, calling v.Enter on the way down and
// v.Leave on the way back up. spine passed to each callback is the path
// from root (inclusive) to n's parent (inclusive) — i.e. n itself is never
// in its own spine, and root's own spine is empty. The slice is reused across calls; a Visitor that wants
// to retain a spine must copy it.
func Traverse(root Node, v Visitor) {
	if !root.Valid() {
		return
	}
	spine := make([]Node, 0, 16)
	walk(root, spine, v)
}

func walk(n Node, spine []Node, v Visitor) {
	descend := v.Enter(n, spine)
	if v.Halted() {
		return
	}
	if descend {
		childSpine := append(spine, n)
		for _, c := range n.Children() {
			walk(c, childSpine, v)
			if v.Halted() {
				break
			}
		}
	}
	if v.Halted() {
		return
	}
	v.Leave(n, spine)
}

// FuncVisitor adapts a pair of plain functions to the Visitor interface,
// for callers that don't need halting. Halted always reports false unless
// Halt is set to true.
type FuncVisitor struct {
	EnterFn func(n Node, spine []Node) bool
	LeaveFn func(n Node, spine []Node)
	Halt    bool
}

func (f *FuncVisitor) Enter(n Node, spine []Node) bool {
	if f.EnterFn == nil {
		return true
	}
	return f.EnterFn(n, spine)
}

func (f *FuncVisitor) Leave(n Node, spine []Node) {
	if f.LeaveFn != nil {
		f.LeaveFn(n, spine)
	}
}

func (f *FuncVisitor) Halted() bool { return f.Halt }
