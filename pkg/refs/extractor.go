package refs

import (
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/symbols"
)

// Extract mines a reference Table out of a parsed document's root node,
// partitioning class/function/method bodies into nested scopes as it
// descends so the resulting tree is a spatial partition (§3).
func Extract(root parsetree.Node, uri string) *Table {
	fileRange := symbols.Location{URI: uri, Start: root.StartByte(), End: root.EndByte()}
	t := NewTable(uri, fileRange)
	walk(root, t, uri)
	return t
}

func walk(node parsetree.Node, t *Table, uri string) {
	// skip names a child already fully handled by the switch below (the
	// callee of a call_expression, the constructor of a new_expression),
	// so the generic recursion at the bottom doesn't revisit it and
	// re-classify it a second time (e.g. a bare callee identifier as a
	// Variable use).
	var skip parsetree.Node

	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration", "interface_declaration":
		if body := node.ChildByFieldName("body"); body.Valid() {
			t.PushScope(loc(uri, body))
		}
		if h := extendsTarget(node); h.Valid() {
			t.Add(Reference{Kind: symbols.Class, Name: h.Text(), Location: loc(uri, h)})
		}
	case "function_declaration", "method_definition", "arrow_function", "function_expression":
		if body := node.ChildByFieldName("body"); body.Valid() {
			t.PushScope(loc(uri, body))
		}
	case "call_expression":
		if fn := node.ChildByFieldName("function"); fn.Valid() {
			skip = fn
			switch fn.Kind() {
			case "identifier":
				t.Add(Reference{Kind: symbols.Function, Name: fn.Text(), Location: loc(uri, fn)})
			case "member_expression":
				if prop := fn.ChildByFieldName("property"); prop.Valid() {
					t.Add(Reference{Kind: symbols.Method, Name: prop.Text(), Location: loc(uri, prop)})
				}
				if obj := fn.ChildByFieldName("object"); obj.Valid() {
					walk(obj, t, uri)
				}
			default:
				walk(fn, t, uri)
			}
		}
	case "new_expression":
		if ctor := node.ChildByFieldName("constructor"); ctor.Valid() {
			t.Add(Reference{Kind: symbols.Class, Name: ctor.Text(), Location: loc(uri, ctor)})
			skip = ctor
		}
	case "member_expression":
		if prop := node.ChildByFieldName("property"); prop.Valid() {
			t.Add(Reference{Kind: symbols.Property, Name: prop.Text(), Location: loc(uri, prop)})
		}
	case "type_identifier":
		t.Add(Reference{Kind: symbols.Class, Name: node.Text(), Location: loc(uri, node)})
	case "import_specifier":
		nameNode := node.ChildByFieldName("name")
		aliasNode := node.ChildByFieldName("alias")
		if nameNode.Valid() {
			ref := Reference{Kind: symbols.Class, Name: nameNode.Text(), Location: loc(uri, node)}
			if aliasNode.Valid() {
				ref.Alternate = aliasNode.Text()
			}
			t.Add(ref)
		}
	case "identifier":
		if isVariableUse(node) {
			t.Add(Reference{Kind: symbols.Variable, Name: node.Text(), Location: loc(uri, node)})
		}
	}

	for _, c := range node.Children() {
		if skip.Valid() && c.Equal(skip) {
			continue
		}
		walk(c, t, uri)
	}
}

// isVariableUse reports whether node (an identifier) sits in an
// expression position rather than a declaration or member-name position,
// so plain reads of a variable get a Reference distinct from its
// declaration Symbol.
func isVariableUse(node parsetree.Node) bool {
	parent := node.Parent()
	if !parent.Valid() {
		return false
	}
	switch parent.Kind() {
	case "variable_declarator", "required_parameter", "optional_parameter",
		"function_declaration", "method_definition", "class_declaration",
		"interface_declaration", "import_specifier", "public_field_definition":
		return false
	}
	return true
}

func extendsTarget(node parsetree.Node) parsetree.Node {
	for _, h := range node.Children() {
		if h.Kind() != "class_heritage" {
			continue
		}
		for _, c := range h.Children() {
			if c.Kind() == "extends_clause" {
				return c.ChildByFieldName("value")
			}
		}
	}
	return parsetree.Node{}
}

func loc(uri string, n parsetree.Node) symbols.Location {
	return symbols.Location{URI: uri, Start: n.StartByte(), End: n.EndByte()}
}
