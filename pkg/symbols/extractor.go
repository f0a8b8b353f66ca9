package symbols

import (
	"fmt"
	"strings"

	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/resolve"
)

// NamespaceEvent records a namespace-definition or namespace-use
// declaration encountered during extraction, in source order, so
// Table.NameResolverAt (§4.5) can replay the ones preceding an arbitrary
// position without re-walking the whole tree.
type NamespaceEvent struct {
	Offset       int
	SetNamespace *string
	Rule         *resolve.Rule
	// BodyOffset is the insertion point for a new use-declaration under
	// this namespace (§4.9, §8 Scenario 5); valid only when SetNamespace
	// is set.
	BodyOffset int
}

// extractor is the transform-stack walker behind Extract: each recognized
// phrase kind gets its own dispatch case that builds a Symbol from its
// children and hands it to the enclosing frame, matching §4.4's "each
// phrase kind pushes a small state object on preorder that accumulates
// children's values and produces its own symbol on postorder" contract,
// expressed here as ordinary recursive calls rather than an explicit
// stack — Go's call stack plays that role, and each dispatch case is the
// "state object" for its phrase kind.
//
// The namespace-resolver visitor and the symbol visitor the spec
// describes as a two-visitor composite are fused into this single walk
// (§9 "implementers may instead fuse them"): ex.resolver is mutated in
// place as namespace-definitions and namespace-use declarations are
// encountered in source order, so every declaration downstream observes
// up-to-date resolver state.
type extractor struct {
	uri      string
	resolver *resolve.Resolver
	events   []NamespaceEvent
}

// Extract mines a Table of Symbols out of a parsed document's root node.
func Extract(root parsetree.Node, uri string) *Table {
	ex := &extractor{uri: uri, resolver: resolve.New()}
	file := &Symbol{
		Kind:     File,
		Location: Location{URI: uri, Start: root.StartByte(), End: root.EndByte()},
	}
	ex.extractBody(root.Children(), file)
	return &Table{uri: uri, Root: file, events: ex.events}
}

func (ex *extractor) recordNamespace(offset, bodyOffset int, ns string) {
	ex.resolver.SetNamespace(ns)
	nsCopy := ex.resolver.Namespace()
	ex.events = append(ex.events, NamespaceEvent{Offset: offset, SetNamespace: &nsCopy, BodyOffset: bodyOffset})
}

func (ex *extractor) recordRule(offset int, rule resolve.Rule) {
	ex.resolver.AddRule(rule)
	ex.events = append(ex.events, NamespaceEvent{Offset: offset, Rule: &rule})
}

// extractBody walks one body's direct children in source order, applying
// the doc-comment attachment rule (§4.4): a doc comment attaches to the
// next declaration unless a `}` token intervenes first, which clears it.
func (ex *extractor) extractBody(nodes []parsetree.Node, parent *Symbol) {
	var pendingDoc string
	for _, child := range nodes {
		if !child.Valid() || child.IsError() {
			continue
		}
		if isCommentKind(child.Kind()) {
			if isDocComment(child.Text()) {
				pendingDoc = stripCommentMarkers(child.Text())
			}
			continue
		}
		if child.Kind() == "}" {
			pendingDoc = ""
			continue
		}
		doc := pendingDoc
		pendingDoc = ""
		ex.dispatch(child, parent, doc)
	}
}

func isCommentKind(kind string) bool {
	return kind == "comment"
}

func (ex *extractor) dispatch(node parsetree.Node, parent *Symbol, doc string) {
	switch node.Kind() {
	case "internal_module", "module":
		ex.extractNamespace(node, parent, doc)
	case "import_statement":
		ex.extractImport(node)
	case "class_declaration", "abstract_class_declaration":
		ex.extractClass(node, parent, doc)
	case "interface_declaration":
		ex.extractInterface(node, parent, doc)
	case "function_declaration":
		if sym := ex.extractFunction(node, doc); sym != nil {
			parent.AddChild(sym)
		}
	case "lexical_declaration", "variable_declaration":
		ex.extractTopLevelDeclarators(node, parent, doc)
	case "expression_statement":
		ex.extractAssignments(node, parent)
	case "for_in_statement":
		ex.extractForIn(node, parent)
	case "statement_block":
		ex.extractBody(node.Children(), parent)
	default:
		// Not a recognized declaration form; still descend so nested
		// declarations (e.g. inside an if-block) are not missed.
		ex.extractBody(node.Children(), parent)
	}
}

func (ex *extractor) extractNamespace(node parsetree.Node, parent *Symbol, doc string) {
	nameNode := node.ChildByFieldName("name")
	raw := nameNode.Text()
	body := node.ChildByFieldName("body")
	bodyOffset := node.EndByte()
	if body.Valid() {
		bodyOffset = body.StartByte() + 1
	}
	ex.recordNamespace(node.StartByte(), bodyOffset, raw)

	sym := &Symbol{
		Kind:     Namespace,
		Name:     ex.resolver.Namespace(),
		Doc:      doc,
		Location: loc(ex.uri, node),
	}
	parent.AddChild(sym)

	if body.Valid() {
		ex.extractBody(body.Children(), sym)
	}
}

// extractImport treats `import { A as B } from "Target"` as the subject
// grammar's namespace-use declaration: each named import becomes a Class-
// kind alias rule (the grammar this module compiles in has no separate
// function/const import syntax of its own — see DESIGN.md).
func (ex *extractor) extractImport(node parsetree.Node) {
	clause := node.ChildByFieldName("source")
	target := strings.Trim(clause.Text(), `"'`)
	target = strings.Trim(target, resolve.Separator)

	for _, c := range node.Children() {
		if c.Kind() != "import_clause" {
			continue
		}
		for _, spec := range c.Children() {
			if spec.Kind() != "named_imports" {
				continue
			}
			for _, is := range spec.Children() {
				if is.Kind() != "import_specifier" {
					continue
				}
				nameNode := is.ChildByFieldName("name")
				aliasNode := is.ChildByFieldName("alias")
				alias := nameNode.Text()
				if aliasNode.Valid() {
					alias = aliasNode.Text()
				}
				ex.recordRule(node.StartByte(), resolve.Rule{
					Kind:   resolve.Class,
					Alias:  alias,
					Target: target + resolve.Separator + nameNode.Text(),
				})
			}
		}
	}
}

func (ex *extractor) extractClass(node parsetree.Node, parent *Symbol, doc string) {
	nameNode := node.ChildByFieldName("name")
	rawName := nameNode.Text()
	if rawName == "" {
		rawName = createAnonymousName(node)
	}

	sym := &Symbol{
		Kind:      Class,
		Name:      ex.resolver.Resolve(rawName, resolve.Class),
		Doc:       doc,
		Location:  loc(ex.uri, node),
		Modifiers: ex.classModifiers(node),
	}
	if !nameNode.Valid() {
		sym.Modifiers |= Anonymous
	}

	for _, h := range node.Children() {
		if h.Kind() != "class_heritage" {
			continue
		}
		for _, c := range h.Children() {
			switch c.Kind() {
			case "extends_clause":
				if v := c.ChildByFieldName("value"); v.Valid() {
					sym.Associated = append(sym.Associated, Stub{
						Kind: Class,
						Name: ex.resolver.Resolve(v.Text(), resolve.Class),
					})
				}
			case "implements_clause":
				for _, t := range c.NamedChildren() {
					sym.Associated = append(sym.Associated, Stub{
						Kind: Interface,
						Name: ex.resolver.Resolve(t.Text(), resolve.Class),
					})
				}
			}
		}
	}

	ex.extractMagicMembers(sym, doc)

	parent.AddChild(sym)
	if body := node.ChildByFieldName("body"); body.Valid() {
		ex.extractClassBody(body.Children(), sym)
	}
}

func (ex *extractor) classModifiers(node parsetree.Node) Modifier {
	var m Modifier
	for _, c := range node.Children() {
		if c.Kind() == "abstract" {
			m |= Abstract
		}
	}
	return m
}

func (ex *extractor) extractInterface(node parsetree.Node, parent *Symbol, doc string) {
	nameNode := node.ChildByFieldName("name")
	sym := &Symbol{
		Kind:     Interface,
		Name:     ex.resolver.Resolve(nameNode.Text(), resolve.Class),
		Doc:      doc,
		Location: loc(ex.uri, node),
	}

	for _, c := range node.Children() {
		if c.Kind() != "extends_type_clause" {
			continue
		}
		for _, t := range c.NamedChildren() {
			sym.Associated = append(sym.Associated, Stub{
				Kind: Interface,
				Name: ex.resolver.Resolve(t.Text(), resolve.Class),
			})
		}
	}

	parent.AddChild(sym)
	if body := node.ChildByFieldName("body"); body.Valid() {
		ex.extractClassBody(body.Children(), sym)
	}
}

// extractClassBody handles a class_body or interface_body's direct
// members (§4.4 method/field declarations).
func (ex *extractor) extractClassBody(nodes []parsetree.Node, owner *Symbol) {
	var pendingDoc string
	for _, child := range nodes {
		if !child.Valid() || child.IsError() {
			continue
		}
		if isCommentKind(child.Kind()) {
			if isDocComment(child.Text()) {
				pendingDoc = stripCommentMarkers(child.Text())
			}
			continue
		}
		if child.Kind() == "}" {
			pendingDoc = ""
			continue
		}
		doc := pendingDoc
		pendingDoc = ""

		switch child.Kind() {
		case "method_definition", "abstract_method_signature":
			owner.AddChild(ex.extractMethod(child, doc))
		case "public_field_definition":
			owner.AddChild(ex.extractField(child, doc))
		}
	}
}

func (ex *extractor) extractMethod(node parsetree.Node, doc string) *Symbol {
	nameNode := node.ChildByFieldName("name")
	name := nameNode.Text()
	if name == "" {
		name = createAnonymousName(node)
	}

	sym := &Symbol{
		Kind:      Method,
		Name:      name,
		Doc:       doc,
		Location:  loc(ex.uri, node),
		Modifiers: memberModifiers(node),
	}

	if params := node.ChildByFieldName("parameters"); params.Valid() {
		sym.Children = append(sym.Children, ex.extractParameters(params, sym.Name)...)
	}
	if ret := node.ChildByFieldName("return_type"); ret.Valid() {
		sym.Type = strings.TrimPrefix(ret.Text(), ":")
		sym.Type = strings.TrimSpace(sym.Type)
	}

	ex.applyDocTags(sym, doc)

	if body := node.ChildByFieldName("body"); body.Valid() {
		ex.extractBody(body.Children(), sym)
	}
	return sym
}

func (ex *extractor) extractParameters(params parsetree.Node, scope string) []*Symbol {
	var out []*Symbol
	for _, p := range params.NamedChildren() {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			pattern := p.ChildByFieldName("pattern")
			name := pattern.Text()
			sym := &Symbol{
				Kind:     Parameter,
				Name:     name,
				Scope:    scope,
				Location: loc(ex.uri, p),
			}
			if p.Kind() == "optional_parameter" {
				// no dedicated modifier; optionality is carried in Type below
			}
			if t := p.ChildByFieldName("type"); t.Valid() {
				sym.Type = strings.TrimSpace(strings.TrimPrefix(t.Text(), ":"))
			}
			for _, c := range p.Children() {
				if c.Kind() == "..." {
					sym.Modifiers |= Variadic
				}
				if c.Kind() == "readonly" {
					sym.Modifiers |= ReadOnly
				}
			}
			out = append(out, sym)
		}
	}
	return out
}

func (ex *extractor) extractField(node parsetree.Node, doc string) *Symbol {
	nameNode := node.ChildByFieldName("name")
	mods := memberModifiers(node)

	kind := Property
	if mods.Has(Static) && mods.Has(ReadOnly) {
		kind = ClassConstant
	}

	sym := &Symbol{
		Kind:      kind,
		Name:      nameNode.Text(),
		Doc:       doc,
		Location:  loc(ex.uri, node),
		Modifiers: mods,
	}
	if t := node.ChildByFieldName("type"); t.Valid() {
		sym.Type = strings.TrimSpace(strings.TrimPrefix(t.Text(), ":"))
	}
	if v := node.ChildByFieldName("value"); v.Valid() {
		sym.Value = v.Text()
	}
	ex.applyDocTags(sym, doc)
	return sym
}

func memberModifiers(node parsetree.Node) Modifier {
	var m Modifier
	for _, c := range node.Children() {
		switch c.Kind() {
		case "static":
			m |= Static
		case "abstract":
			m |= Abstract
		case "readonly":
			m |= ReadOnly
		case "public":
			m |= Public
		case "protected":
			m |= Protected
		case "private":
			m |= Private
		}
	}
	return m
}

func (ex *extractor) extractFunction(node parsetree.Node, doc string) *Symbol {
	nameNode := node.ChildByFieldName("name")
	sym := &Symbol{
		Kind:     Function,
		Name:     ex.resolver.Resolve(nameNode.Text(), resolve.Function),
		Doc:      doc,
		Location: loc(ex.uri, node),
	}
	if params := node.ChildByFieldName("parameters"); params.Valid() {
		sym.Children = append(sym.Children, ex.extractParameters(params, sym.Name)...)
	}
	if ret := node.ChildByFieldName("return_type"); ret.Valid() {
		sym.Type = strings.TrimSpace(strings.TrimPrefix(ret.Text(), ":"))
	}
	ex.applyDocTags(sym, doc)
	if body := node.ChildByFieldName("body"); body.Valid() {
		ex.extractBody(body.Children(), sym)
	}
	return sym
}

// extractTopLevelDeclarators handles `const`/`let`/`var` statements: a
// top-level or namespace-scoped `const` becomes a Constant; any other
// declarator whose value is an arrow function or function expression
// becomes a Function symbol with its parameters; anything else becomes
// Variable symbols on the enclosing scope (deduplicated by name), per §4.4's "variable uses ... added as Variable symbols to the
// enclosing function-like scope, deduplicated by name" rule generalized
// to non-function enclosing scopes too.
func (ex *extractor) extractTopLevelDeclarators(node parsetree.Node, parent *Symbol, doc string) {
	isConst := false
	for _, c := range node.Children() {
		if c.Kind() == "const" {
			isConst = true
		}
	}

	for _, d := range node.NamedChildren() {
		if d.Kind() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")

		if isConst && (parent.Kind == File || parent.Kind == Namespace) {
			sym := &Symbol{
				Kind:     Constant,
				Name:     ex.resolver.Resolve(nameNode.Text(), resolve.Constant),
				Doc:      doc,
				Location: loc(ex.uri, d),
			}
			if value.Valid() {
				sym.Value = value.Text()
			}
			parent.AddChild(sym)
			continue
		}

		if value.Valid() && (value.Kind() == "arrow_function" || value.Kind() == "function_expression") {
			fn := &Symbol{
				Kind:     Function,
				Name:     nameNode.Text(),
				Doc:      doc,
				Location: loc(ex.uri, d),
			}
			if params := value.ChildByFieldName("parameters"); params.Valid() {
				fn.Children = append(fn.Children, ex.extractParameters(params, fn.Name)...)
			}
			parent.AddChild(fn)
			continue
		}

		addVariable(parent, nameNode.Text(), loc(ex.uri, nameNode))
	}
}

func (ex *extractor) extractAssignments(node parsetree.Node, parent *Symbol) {
	for _, c := range node.NamedChildren() {
		if c.Kind() != "assignment_expression" {
			continue
		}
		left := c.ChildByFieldName("left")
		if left.Valid() && left.Kind() == "identifier" {
			addVariable(parent, left.Text(), loc(ex.uri, left))
		}
	}
}

func (ex *extractor) extractForIn(node parsetree.Node, parent *Symbol) {
	left := node.ChildByFieldName("left")
	if left.Valid() && (left.Kind() == "identifier" || strings.Contains(left.Kind(), "pattern")) {
		addVariable(parent, left.Text(), loc(ex.uri, left))
	}
	if body := node.ChildByFieldName("body"); body.Valid() {
		ex.extractBody(body.Children(), parent)
	}
}

func addVariable(scope *Symbol, name string, l Location) {
	if name == "" {
		return
	}
	for _, c := range scope.Children {
		if c.Kind == Variable && c.Name == name {
			return
		}
	}
	scope.AddChild(&Symbol{Kind: Variable, Name: name, Location: l})
}

// applyDocTags attaches @param/@return/@var type strings from a parsed
// doc comment to sym or its matching parameter children (§4.4).
func (ex *extractor) applyDocTags(sym *Symbol, doc string) {
	if doc == "" {
		return
	}
	for _, tag := range parseDocTags(doc) {
		switch tag.Tag {
		case "return":
			if sym.Type == "" && tag.Type != "" {
				sym.Type = ex.resolver.Resolve(tag.Type, resolve.Class)
			}
		case "param":
			for _, p := range sym.Children {
				if p.Kind == Parameter && p.Name == tag.Name {
					p.Type = ex.resolver.Resolve(tag.Type, resolve.Class)
				}
			}
		case "var":
			if sym.Kind == Property && sym.Type == "" {
				sym.Type = ex.resolver.Resolve(tag.Type, resolve.Class)
			}
		}
	}
}

// extractMagicMembers synthesizes Property/Method symbols declared only
// in a class-like symbol's doc comment via `@property`/`@method` tags
// (§4.4 magic members, GLOSSARY "Magic members").
func (ex *extractor) extractMagicMembers(owner *Symbol, doc string) {
	if doc == "" {
		return
	}
	for _, tag := range parseDocTags(doc) {
		switch tag.Tag {
		case "property", "property-read", "property-write":
			if tag.Name == "" {
				continue
			}
			mods := Magic
			if tag.Tag == "property-read" {
				mods |= ReadOnly
			}
			if tag.Tag == "property-write" {
				mods |= WriteOnly
			}
			owner.AddChild(&Symbol{
				Kind:      Property,
				Name:      tag.Name,
				Modifiers: mods,
				Type:      ex.resolver.Resolve(tag.Type, resolve.Class),
				Location:  owner.Location,
			})
		case "method":
			fields := strings.Fields(tag.Rest)
			if len(fields) == 0 {
				continue
			}
			methodName := fields[len(fields)-1]
			methodName = strings.TrimSuffix(methodName, "()")
			owner.AddChild(&Symbol{
				Kind:      Method,
				Name:      methodName,
				Modifiers: Magic,
				Location:  owner.Location,
			})
		}
	}
}

// createAnonymousName derives a deterministic synthetic name from a
// node's byte range so identity survives a reparse of unchanged text
// (§4.4, §8 "Anonymous class at end-of-file").
func createAnonymousName(node parsetree.Node) string {
	return fmt.Sprintf("{anonymous:%d-%d}", node.StartByte(), node.EndByte())
}

func loc(uri string, node parsetree.Node) Location {
	return Location{URI: uri, Start: node.StartByte(), End: node.EndByte()}
}
