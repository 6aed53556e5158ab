package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/component-atlas/internal/component"
)

// maxResolveDepth bounds re-export chains followed while looking up a
// declaration (index.ts -> forms/index.ts -> Button.tsx ...).
const maxResolveDepth = 8

// declaration locates the definition behind an exported name.
type declaration struct {
	file *sourceFile
	stmt *sitter.Node // top-level statement, anchor for the doc comment
	body *sitter.Node // function/class declaration or the declarator's value
	name string       // local binding name inside file
}

// binding is one name introduced by a declaration and the node defining it.
type binding struct {
	name string
	body *sitter.Node
}

// declarationBindings returns the bindings introduced by a declaration node.
func declarationBindings(f *sourceFile, decl *sitter.Node) []binding {
	var out []binding
	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
		for _, d := range findChildrenByType(decl, "variable_declarator") {
			nameNode := d.ChildByFieldName("name")
			if nameNode == nil || nameNode.Kind() != "identifier" {
				continue
			}
			out = append(out, binding{name: f.text(nameNode), body: d.ChildByFieldName("value")})
		}
	case "function_declaration", "generator_function_declaration", "class_declaration", "abstract_class_declaration":
		if nameNode := decl.ChildByFieldName("name"); nameNode != nil {
			out = append(out, binding{name: f.text(nameNode), body: decl})
		}
	}
	return out
}

// findDeclaration searches f for the binding of name, following imports and
// re-exports up to maxResolveDepth files deep.
func (p *pass) findDeclaration(f *sourceFile, name string, depth int) *declaration {
	if f == nil || depth > maxResolveDepth {
		return nil
	}

	for _, stmt := range namedChildren(f.root) {
		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration", "function_declaration",
			"generator_function_declaration", "class_declaration", "abstract_class_declaration":
			if d := matchDeclaration(f, stmt, stmt, name); d != nil {
				return d
			}

		case "export_statement":
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				if name == "default" && hasAnonymousChild(stmt, "default") {
					if body := namedBody(f, decl); body != nil {
						return &declaration{file: f, stmt: stmt, body: body, name: localName(f, decl)}
					}
				}
				if d := matchDeclaration(f, stmt, decl, name); d != nil {
					return d
				}
				continue
			}

			if name == "default" && hasAnonymousChild(stmt, "default") {
				if value := stmt.ChildByFieldName("value"); value != nil && value.Kind() == "identifier" {
					return p.findDeclaration(f, f.text(value), depth+1)
				}
				continue
			}

			if d := p.followReexport(f, stmt, name, depth); d != nil {
				return d
			}

		case "import_statement":
			if d := p.followImport(f, stmt, name, depth); d != nil {
				return d
			}
		}
	}

	return nil
}

func matchDeclaration(f *sourceFile, stmt, decl *sitter.Node, name string) *declaration {
	for _, b := range declarationBindings(f, decl) {
		if b.name == name {
			return &declaration{file: f, stmt: stmt, body: b.body, name: name}
		}
	}
	return nil
}

// namedBody returns the body of a default-exported function or class.
func namedBody(f *sourceFile, decl *sitter.Node) *sitter.Node {
	switch decl.Kind() {
	case "function_declaration", "generator_function_declaration", "class_declaration",
		"abstract_class_declaration", "function_expression", "class":
		return decl
	}
	return nil
}

func localName(f *sourceFile, decl *sitter.Node) string {
	if n := decl.ChildByFieldName("name"); n != nil {
		return f.text(n)
	}
	return ""
}

// followReexport handles `export { A as name } from './x'`, `export { A as name }`
// and `export * from './x'` while looking for name.
func (p *pass) followReexport(f *sourceFile, stmt *sitter.Node, name string, depth int) *declaration {
	source := stmt.ChildByFieldName("source")

	if clause := findChildByType(stmt, "export_clause"); clause != nil {
		for _, spec := range findChildrenByType(clause, "export_specifier") {
			local, exported := specifierNames(f, spec)
			if exported != name {
				continue
			}
			if source == nil {
				return p.findDeclaration(f, local, depth+1)
			}
			target := p.loadModule(f, stringLiteral(source, f.source))
			return p.findDeclaration(target, local, depth+1)
		}
		return nil
	}

	if source != nil && hasAnonymousChild(stmt, "*") && findChildByType(stmt, "namespace_export") == nil {
		target := p.loadModule(f, stringLiteral(source, f.source))
		return p.findDeclaration(target, name, depth+1)
	}
	return nil
}

// followImport handles `import { A as name } from './x'` and
// `import name from './x'`.
func (p *pass) followImport(f *sourceFile, stmt *sitter.Node, name string, depth int) *declaration {
	source := stmt.ChildByFieldName("source")
	clause := findChildByType(stmt, "import_clause")
	if source == nil || clause == nil {
		return nil
	}

	imported := ""
	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			if f.text(child) == name {
				imported = "default"
			}
		case "named_imports":
			for _, spec := range findChildrenByType(child, "import_specifier") {
				nameNode := spec.ChildByFieldName("name")
				local := f.text(nameNode)
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = f.text(alias)
				}
				if local == name {
					imported = f.text(nameNode)
				}
			}
		}
	}
	if imported == "" {
		return nil
	}

	target := p.loadModule(f, stringLiteral(source, f.source))
	return p.findDeclaration(target, imported, depth+1)
}

// specifierNames returns the local and exported names of an export_specifier.
func specifierNames(f *sourceFile, spec *sitter.Node) (local, exported string) {
	local = f.text(spec.ChildByFieldName("name"))
	exported = local
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		exported = f.text(alias)
	}
	return stripQuotes(local), stripQuotes(exported)
}

func stripQuotes(s string) string {
	return strings.Trim(s, `"'`)
}

// subComponents collects compound members of the binding name in f:
// `Name.Member = ...` statements and `Object.assign(Base, { Member })` or
// plain object literal values.
func subComponents(f *sourceFile, name string, body *sitter.Node) []string {
	var members []string
	seen := make(map[string]bool)
	add := func(m string) {
		if m != "" && !seen[m] {
			seen[m] = true
			members = append(members, m)
		}
	}

	for _, key := range compoundKeys(f, body) {
		add(key)
	}

	if name == "" {
		return members
	}
	for _, stmt := range namedChildren(f.root) {
		if stmt.Kind() != "expression_statement" {
			continue
		}
		assign := findChildByType(stmt, "assignment_expression")
		if assign == nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Kind() != "member_expression" {
			continue
		}
		object := left.ChildByFieldName("object")
		property := left.ChildByFieldName("property")
		if object == nil || property == nil || f.text(object) != name {
			continue
		}
		member := f.text(property)
		if isComponentName(member) {
			add(member)
		}
	}
	return members
}

// compoundKeys returns the PascalCase keys of an Object.assign(...) second
// argument or of a plain object literal value.
func compoundKeys(f *sourceFile, body *sitter.Node) []string {
	if body == nil {
		return nil
	}

	var object *sitter.Node
	switch body.Kind() {
	case "object":
		object = body
	case "call_expression":
		fn := body.ChildByFieldName("function")
		if fn == nil || f.text(fn) != "Object.assign" {
			return nil
		}
		args := namedChildren(body.ChildByFieldName("arguments"))
		if len(args) < 2 {
			return nil
		}
		object = args[len(args)-1]
		if object.Kind() != "object" {
			return nil
		}
	default:
		return nil
	}

	var keys []string
	for _, entry := range namedChildren(object) {
		var key string
		switch entry.Kind() {
		case "pair":
			key = stripQuotes(f.text(entry.ChildByFieldName("key")))
		case "shorthand_property_identifier":
			key = f.text(entry)
		}
		if isComponentName(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// findPropsType finds `interface <name>` or `type <name> = {...}` in f,
// exported or not.
func findPropsType(f *sourceFile, name string) *sitter.Node {
	if f == nil || name == "" {
		return nil
	}
	for _, stmt := range namedChildren(f.root) {
		decl := stmt
		if stmt.Kind() == "export_statement" {
			decl = stmt.ChildByFieldName("declaration")
			if decl == nil {
				continue
			}
		}
		if decl.Kind() != "interface_declaration" && decl.Kind() != "type_alias_declaration" {
			continue
		}
		if nameNode := decl.ChildByFieldName("name"); nameNode != nil && f.text(nameNode) == name {
			return decl
		}
	}
	return nil
}

// extractProps reads the directly declared members of an interface or an
// object type alias. Inherited members (extends, generic bases) are not
// resolved.
func extractProps(f *sourceFile, decl *sitter.Node) map[string]component.PropDescriptor {
	props := map[string]component.PropDescriptor{}
	if decl == nil {
		return props
	}

	var bodies []*sitter.Node
	switch decl.Kind() {
	case "interface_declaration":
		bodies = append(bodies, decl.ChildByFieldName("body"))
	case "type_alias_declaration":
		value := decl.ChildByFieldName("value")
		if value == nil {
			break
		}
		if value.Kind() == "object_type" {
			bodies = append(bodies, value)
		} else if value.Kind() == "intersection_type" {
			// Only the literal parts of `Base & { ... }` are direct members.
			walkTree(value, func(n *sitter.Node) bool {
				if n.Kind() == "object_type" {
					bodies = append(bodies, n)
					return false
				}
				return n.Kind() == "intersection_type" || n.Kind() == "parenthesized_type"
			})
		}
	}

	for _, body := range bodies {
		for _, member := range namedChildren(body) {
			name, prop, ok := memberProp(f, member)
			if ok {
				props[name] = prop
			}
		}
	}
	return props
}

func memberProp(f *sourceFile, member *sitter.Node) (string, component.PropDescriptor, bool) {
	if member.Kind() != "property_signature" && member.Kind() != "method_signature" {
		return "", component.PropDescriptor{}, false
	}

	nameNode := member.ChildByFieldName("name")
	if nameNode == nil {
		return "", component.PropDescriptor{}, false
	}
	name := stripQuotes(f.text(nameNode))
	optional := hasAnonymousChild(member, "?")

	var typ string
	if member.Kind() == "property_signature" {
		if ann := member.ChildByFieldName("type"); ann != nil {
			typ = strings.TrimSpace(strings.TrimPrefix(f.text(ann), ":"))
		} else {
			typ = "any"
		}
	} else {
		rest := strings.TrimPrefix(f.text(member), f.text(nameNode))
		typ = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "?"))
	}

	prop := component.PropDescriptor{
		Type:     collapseWhitespace(typ),
		Required: !optional,
	}
	if doc := leadingComment(member, f.source); doc != "" {
		prop.Description = component.StringPtr(doc)
	}
	return name, prop, true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// propDefaults reads destructuring defaults from the first parameter of the
// component function: `({ size = 'md' }: Props) => ...`.
func propDefaults(f *sourceFile, body *sitter.Node) map[string]string {
	defaults := map[string]string{}
	if body == nil {
		return defaults
	}

	var params *sitter.Node
	walkTree(body, func(n *sitter.Node) bool {
		if params != nil {
			return false
		}
		if n.Kind() == "formal_parameters" {
			params = n
			return false
		}
		return true
	})

	first := namedChildren(params)
	if len(first) == 0 {
		return defaults
	}
	pattern := first[0].ChildByFieldName("pattern")
	if pattern == nil {
		pattern = first[0]
	}
	if pattern.Kind() != "object_pattern" {
		return defaults
	}

	for _, entry := range namedChildren(pattern) {
		switch entry.Kind() {
		case "object_assignment_pattern":
			left := entry.ChildByFieldName("left")
			right := entry.ChildByFieldName("right")
			if left != nil && right != nil {
				defaults[f.text(left)] = collapseWhitespace(f.text(right))
			}
		case "pair_pattern":
			key := entry.ChildByFieldName("key")
			value := entry.ChildByFieldName("value")
			if key == nil || value == nil || value.Kind() != "assignment_pattern" {
				continue
			}
			if right := value.ChildByFieldName("right"); right != nil {
				defaults[stripQuotes(f.text(key))] = collapseWhitespace(f.text(right))
			}
		}
	}
	return defaults
}
