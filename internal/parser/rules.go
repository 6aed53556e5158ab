package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// exportRule is one recognizer for a form of export statement. Rules are
// evaluated in order and the first whose match returns true handles the
// statement.
type exportRule struct {
	name  string
	match func(f *sourceFile, stmt *sitter.Node) bool
	apply func(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome
}

// exportRules is the ordered rule list. It is filled in init because
// applyBarrel re-enters applyRules.
var exportRules []exportRule

func init() {
	exportRules = []exportRule{
		{name: "type-only", match: isTypeOnlyExport, apply: applyTypeOnly},
		{name: "namespace-reexport", match: isNamespaceReexport, apply: applyNamespaceReexport},
		{name: "barrel", match: isBarrelExport, apply: applyBarrel},
		{name: "export-clause", match: isClauseExport, apply: applyClause},
		{name: "default", match: isDefaultExport, apply: applyDefault},
		{name: "declaration", match: isDeclarationExport, apply: applyDeclaration},
	}
}

// componentDeclarationKinds are declarations that can define a component.
var componentDeclarationKinds = map[string]bool{
	"lexical_declaration":            true,
	"variable_declaration":           true,
	"function_declaration":           true,
	"generator_function_declaration": true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
}

// typeDeclarationKinds never produce runtime components.
var typeDeclarationKinds = map[string]bool{
	"interface_declaration":  true,
	"type_alias_declaration": true,
}

// applyRules runs the first matching rule, or skips the statement.
func applyRules(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	for _, rule := range exportRules {
		if !rule.match(f, stmt) {
			continue
		}
		outcomes := rule.apply(p, f, stmt)
		for i := range outcomes {
			if outcomes[i].Rule == "" {
				outcomes[i].Rule = rule.name
			}
		}
		return outcomes
	}
	return []Outcome{skip(f, stmt, "", "unrecognized export form")}
}

func skip(f *sourceFile, stmt *sitter.Node, name, reason string) Outcome {
	return Outcome{
		Kind:   Skipped,
		Name:   name,
		Reason: reason,
		File:   f.relPath,
		Line:   nodeLine(stmt),
	}
}

// export type { A } / export interface AProps / export type A = ...
func isTypeOnlyExport(f *sourceFile, stmt *sitter.Node) bool {
	if hasAnonymousChild(stmt, "type") {
		return true
	}
	decl := stmt.ChildByFieldName("declaration")
	return decl != nil && typeDeclarationKinds[decl.Kind()]
}

func applyTypeOnly(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	if clause := findChildByType(stmt, "export_clause"); clause != nil {
		var outcomes []Outcome
		for _, spec := range findChildrenByType(clause, "export_specifier") {
			_, exported := specifierNames(f, spec)
			outcomes = append(outcomes, skip(f, spec, exported, "type-only export"))
		}
		if len(outcomes) > 0 {
			return outcomes
		}
	}

	name := ""
	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		name = localName(f, decl)
	}
	return []Outcome{skip(f, stmt, name, "type-only export")}
}

// export * as NS from './x'
func isNamespaceReexport(f *sourceFile, stmt *sitter.Node) bool {
	return findChildByType(stmt, "namespace_export") != nil
}

func applyNamespaceReexport(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	ns := findChildByType(stmt, "namespace_export")
	name := ""
	if ids := namedChildren(ns); len(ids) > 0 {
		name = f.text(ids[len(ids)-1])
	}
	return []Outcome{skip(f, stmt, name, "namespace re-export")}
}

// export * from './barrel'
func isBarrelExport(f *sourceFile, stmt *sitter.Node) bool {
	return hasAnonymousChild(stmt, "*") && stmt.ChildByFieldName("source") != nil
}

func applyBarrel(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	specifier := stringLiteral(stmt.ChildByFieldName("source"), f.source)

	target, ok := resolveModule(f.path, specifier)
	if !ok {
		return []Outcome{skip(f, stmt, "", fmt.Sprintf("cannot resolve barrel %q", specifier))}
	}

	if err := p.enterBarrel(f.path, target); err != nil {
		return []Outcome{skip(f, stmt, "", fmt.Sprintf("barrel %q: %v", specifier, err))}
	}

	barrel, err := p.cache.load(target)
	if err != nil {
		return []Outcome{skip(f, stmt, "", fmt.Sprintf("cannot read barrel %q: %v", specifier, err))}
	}

	return p.parseExports(barrel)
}

// export { A, B as C } [from './x']
func isClauseExport(f *sourceFile, stmt *sitter.Node) bool {
	return findChildByType(stmt, "export_clause") != nil
}

func applyClause(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	clause := findChildByType(stmt, "export_clause")
	source := stmt.ChildByFieldName("source")

	var target *sourceFile
	specifier := ""
	if source != nil {
		specifier = stringLiteral(source, f.source)
		target = p.loadModule(f, specifier)
	}

	var outcomes []Outcome
	for _, spec := range findChildrenByType(clause, "export_specifier") {
		local, exported := specifierNames(f, spec)
		if hasAnonymousChild(spec, "type") {
			outcomes = append(outcomes, skip(f, spec, exported, "type-only export"))
			continue
		}
		if !isComponentName(exported) {
			outcomes = append(outcomes, skip(f, spec, exported, "not a component name"))
			continue
		}

		var decl *declaration
		switch {
		case source == nil:
			decl = p.findDeclaration(f, local, 0)
		case target != nil:
			decl = p.findDeclaration(target, local, 0)
		default:
			p.warn(f, spec, fmt.Sprintf("cannot resolve %q for %s", specifier, exported))
		}

		outcomes = append(outcomes, p.recognize(f, stmt, spec, exported, decl))
	}
	return outcomes
}

// export default function Name() {} / export default Name
func isDefaultExport(f *sourceFile, stmt *sitter.Node) bool {
	return hasAnonymousChild(stmt, "default")
}

func applyDefault(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		name := localName(f, decl)
		if name == "" {
			return []Outcome{skip(f, stmt, "", "anonymous default export")}
		}
		if !isComponentName(name) {
			return []Outcome{skip(f, stmt, name, "not a component name")}
		}
		return []Outcome{p.recognize(f, stmt, stmt, name, &declaration{file: f, stmt: stmt, body: decl, name: name})}
	}

	value := stmt.ChildByFieldName("value")
	if value == nil || value.Kind() != "identifier" {
		return []Outcome{skip(f, stmt, "", "default export of an expression")}
	}
	name := f.text(value)
	if !isComponentName(name) {
		return []Outcome{skip(f, stmt, name, "not a component name")}
	}
	return []Outcome{p.recognize(f, stmt, stmt, name, p.findDeclaration(f, name, 0))}
}

// export const A = ... / export function A() {} / export class A {}
func isDeclarationExport(f *sourceFile, stmt *sitter.Node) bool {
	return stmt.ChildByFieldName("declaration") != nil
}

func applyDeclaration(p *pass, f *sourceFile, stmt *sitter.Node) []Outcome {
	decl := stmt.ChildByFieldName("declaration")
	if !componentDeclarationKinds[decl.Kind()] {
		return []Outcome{skip(f, stmt, localName(f, decl), fmt.Sprintf("unsupported declaration %s", decl.Kind()))}
	}

	bindings := declarationBindings(f, decl)
	if len(bindings) == 0 {
		return []Outcome{skip(f, stmt, "", "destructured export")}
	}

	outcomes := make([]Outcome, 0, len(bindings))
	for _, b := range bindings {
		if !isComponentName(b.name) {
			outcomes = append(outcomes, skip(f, stmt, b.name, "not a component name"))
			continue
		}
		d := &declaration{file: f, stmt: stmt, body: b.body, name: b.name}
		outcomes = append(outcomes, p.recognize(f, stmt, stmt, b.name, d))
	}
	return outcomes
}
