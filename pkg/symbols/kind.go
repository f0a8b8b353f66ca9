// Package symbols implements the symbol extraction pipeline (§4.4, §4.5):
// a tree-sitter-tree walker (SymbolExtractor) that mines declarations into
// a per-document tree of Symbol records (SymbolTable).
package symbols

// Kind enumerates the declaration kinds a Symbol can hold (§3 Symbol).
type Kind int

const (
	File Kind = iota
	Namespace
	Class
	Interface
	Trait
	Function
	Method
	// Constructor is never stored on a Symbol.Kind; it is a surface-layer
	// view computed by Symbol.SurfaceKind for a Method named
	// ConstructorName, per §4.4's "storage kind remains Method" rule.
	Constructor
	Property
	ClassConstant
	Constant
	Parameter
	Variable
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Namespace:
		return "namespace"
	case Class:
		return "class"
	case Interface:
		return "interface"
	case Trait:
		return "trait"
	case Function:
		return "function"
	case Method:
		return "method"
	case Constructor:
		return "constructor"
	case Property:
		return "property"
	case ClassConstant:
		return "class_constant"
	case Constant:
		return "constant"
	case Parameter:
		return "parameter"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// ClassLike reports whether k can hold members and participate in
// TypeAggregate's associated set.
func (k Kind) ClassLike() bool {
	return k == Class || k == Interface || k == Trait
}

// CaseSensitiveName reports whether lookups against a symbol of this kind
// are case-sensitive (§4.6 find): variables, properties, constants, and
// class-constants are case-sensitive; classes, interfaces, traits,
// functions, and methods fold case.
func (k Kind) CaseSensitiveName() bool {
	switch k {
	case Variable, Property, Constant, ClassConstant:
		return true
	default:
		return false
	}
}

// ConstructorName is the subject grammar's reserved identifier for a
// class constructor method.
const ConstructorName = "constructor"
