// Package parser turns a component export manifest (typically src/index.ts)
// into component records.
//
// Parsing is syntactic: the manifest and the files it re-exports from are
// parsed with tree-sitter's TSX grammar and each export statement is run
// through an ordered list of recognizer rules. Every export yields either a
// Recognized record or a Skipped reason; a single bad export never aborts the
// pass. Only a missing or unparseable manifest is fatal (ErrParseFailure).
//
// Known limitations, kept on purpose:
//   - Props are read from the directly declared members of <Name>Props.
//     extends clauses and generic bases are not followed.
//   - Duplicate names are returned as-is; the sync engine keeps the last one.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dominikbraun/graph"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/logging"
)

// Options configures a Parser.
type Options struct {
	RootDir           string   // project root; SourcePath values are relative to it
	Manifest          string   // manifest path, absolute or relative to RootDir
	ComponentPatterns []string // globs used to find a component's file when the manifest doesn't say
	DocPatterns       []string // globs for markdown docs carrying frontmatter overrides
	IgnorePatterns    []string
	Classifier        *component.Classifier
	Logger            *log.Logger
	Progress          ProgressReporter
}

// Parser parses the manifest. It is safe to reuse across passes but not to
// run concurrently; the sync engine serializes passes.
type Parser struct {
	opts Options
}

// New creates a parser, filling defaults for the classifier, logger and
// progress reporter.
func New(opts Options) (*Parser, error) {
	if opts.Classifier == nil {
		c, err := component.NewClassifier(nil)
		if err != nil {
			return nil, err
		}
		opts.Classifier = c
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	if opts.RootDir == "" {
		opts.RootDir = "."
	}
	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, err
	}
	opts.RootDir = root

	if _, err := compilePatterns(opts.ComponentPatterns); err != nil {
		return nil, fmt.Errorf("invalid component pattern: %w", err)
	}
	if _, err := compilePatterns(opts.IgnorePatterns); err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}

	return &Parser{opts: opts}, nil
}

// ManifestPath returns the absolute manifest path.
func (p *Parser) ManifestPath() string {
	if filepath.IsAbs(p.opts.Manifest) {
		return p.opts.Manifest
	}
	return filepath.Join(p.opts.RootDir, p.opts.Manifest)
}

// Parse parses the configured manifest.
func (p *Parser) Parse(ctx context.Context) (*Result, error) {
	return p.ParseFile(ctx, p.ManifestPath())
}

// ParseFile parses the manifest at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	ps := &pass{
		parser:  p,
		ctx:     ctx,
		cache:   newSourceCache(p.opts.RootDir),
		barrels: graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		result:  &Result{},
		logger:  p.opts.Logger,
	}
	defer ps.cache.close()

	docs, docWarnings, err := LoadDocIndex(p.opts.RootDir, p.opts.DocPatterns, p.opts.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	ps.docs = docs
	for _, w := range docWarnings {
		ps.addWarning(w)
	}

	manifest, err := ps.cache.load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read manifest %s: %v", ErrParseFailure, path, err)
	}
	ps.manifest = manifest

	statements := findChildrenByType(manifest.root, "export_statement")
	if manifest.root.HasError() {
		if len(statements) == 0 {
			return nil, fmt.Errorf("%w: %s has syntax errors and no export statements", ErrParseFailure, manifest.relPath)
		}
		ps.addWarning(Warning{File: manifest.relPath, Message: "manifest contains syntax errors; some exports may be missed"})
	}

	progress := p.opts.Progress
	progress.OnParseStart(len(statements))

	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes := ps.applyToStatement(manifest, stmt)
		ps.result.Outcomes = append(ps.result.Outcomes, outcomes...)
		progress.OnExportParsed(outcomeLabel(outcomes))
	}

	recognized, skipped := ps.result.Counts()
	progress.OnParseComplete(recognized, skipped)

	barrelCount, _ := ps.barrels.Order()
	ps.logger.Debug("Manifest parsed",
		"manifest", manifest.relPath,
		"recognized", recognized,
		"skipped", skipped,
		"files", len(ps.cache.files),
		"barrels", barrelCount,
		"doc_overrides", docs.Len(),
	)

	return ps.result, nil
}

func outcomeLabel(outcomes []Outcome) string {
	names := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Name != "" {
			names = append(names, o.Name)
		}
	}
	return strings.Join(names, ", ")
}

// pass holds the state of a single parse.
type pass struct {
	parser   *Parser
	ctx      context.Context
	cache    *sourceCache
	manifest *sourceFile
	barrels  graph.Graph[string, string]
	docs     *DocIndex
	result   *Result
	logger   *log.Logger

	componentIndex map[string][]string // lowercase base name -> relative paths
}

// applyToStatement runs the rules on one statement and records a warning for
// each skipped export.
func (p *pass) applyToStatement(f *sourceFile, stmt *sitter.Node) []Outcome {
	outcomes := applyRules(p, f, stmt)
	for _, o := range outcomes {
		// Skips from nested barrels were already reported while expanding them.
		if o.Kind == Skipped && o.File == f.relPath {
			label := o.Reason
			if o.Name != "" {
				label = fmt.Sprintf("%s: %s", o.Name, o.Reason)
			}
			p.addWarning(Warning{File: o.File, Line: o.Line, Message: "skipped export " + label})
		}
	}
	return outcomes
}

// parseExports applies the rules to every export statement of a barrel file.
func (p *pass) parseExports(f *sourceFile) []Outcome {
	var outcomes []Outcome
	for _, stmt := range findChildrenByType(f.root, "export_statement") {
		if p.ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, p.applyToStatement(f, stmt)...)
	}
	return outcomes
}

// enterBarrel records the edge from -> to, rejecting cycles.
func (p *pass) enterBarrel(from, to string) error {
	if from == to {
		return errors.New("re-exports itself")
	}
	for _, v := range []string{from, to} {
		if err := p.barrels.AddVertex(v); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return err
		}
	}
	if err := p.barrels.AddEdge(from, to); err != nil {
		switch {
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			return errors.New("circular re-export")
		case errors.Is(err, graph.ErrEdgeAlreadyExists):
			return errors.New("already expanded from this file")
		default:
			return err
		}
	}
	return nil
}

// loadModule resolves and parses a module specifier relative to f. Returns
// nil when the module cannot be resolved or read.
func (p *pass) loadModule(f *sourceFile, specifier string) *sourceFile {
	path, ok := resolveModule(f.path, specifier)
	if !ok {
		return nil
	}
	target, err := p.cache.load(path)
	if err != nil {
		p.logger.Debug("Cannot load module", "file", f.relPath, "module", specifier, "error", err)
		return nil
	}
	return target
}

func (p *pass) warn(f *sourceFile, n *sitter.Node, msg string) {
	p.addWarning(Warning{File: f.relPath, Line: nodeLine(n), Message: msg})
}

func (p *pass) addWarning(w Warning) {
	p.result.Warnings = append(p.result.Warnings, w)
	p.logger.Warn("Parse warning", "file", w.File, "line", w.Line, "message", w.Message)
}

// recognize builds the record for an export named exported. stmt is the
// export statement in f; anchor is the node the outcome line refers to.
// decl may be nil when the definition could not be found.
func (p *pass) recognize(f *sourceFile, stmt, anchor *sitter.Node, exported string, decl *declaration) Outcome {
	if decl == nil {
		decl = p.findInComponentFiles(exported)
	}

	record := component.ComponentRecord{Name: exported}

	record.Description = leadingComment(stmt, f.source)
	if record.Description == "" && decl != nil && decl.stmt != nil && decl.stmt != stmt {
		record.Description = leadingComment(decl.stmt, decl.file.source)
	}

	var subs []string
	if decl != nil {
		subs = append(subs, subComponents(decl.file, decl.name, decl.body)...)
	}
	if decl == nil || decl.file != f || decl.name != exported {
		subs = append(subs, subComponents(f, exported, nil)...)
	}
	record.SubComponents = uniqueStrings(subs)

	record.Props = p.props(f, exported, decl)

	if decl != nil {
		record.SourcePath = decl.file.relPath
	} else {
		record.SourcePath = f.relPath
		p.warn(f, anchor, fmt.Sprintf("no declaration found for %s", exported))
	}

	record.Category = p.parser.opts.Classifier.Classify(exported, record.SourcePath)
	record = p.docs.Apply(record)

	return Outcome{
		Kind:   Recognized,
		Name:   exported,
		Record: component.Normalize(record),
		File:   f.relPath,
		Line:   nodeLine(anchor),
	}
}

// propsCandidate is a props type name to look up in a file.
type propsCandidate struct {
	file *sourceFile
	name string
}

// props finds <Name>Props next to the declaration, then in the exporting
// file, then under the local binding name, and merges destructuring defaults.
func (p *pass) props(f *sourceFile, exported string, decl *declaration) map[string]component.PropDescriptor {
	var typeDecl *sitter.Node
	var typeFile *sourceFile

	var candidates []propsCandidate
	if decl != nil {
		candidates = append(candidates, propsCandidate{decl.file, exported + "Props"})
		if decl.name != exported {
			candidates = append(candidates, propsCandidate{decl.file, decl.name + "Props"})
		}
	}
	candidates = append(candidates, propsCandidate{f, exported + "Props"})

	for _, c := range candidates {
		if n := findPropsType(c.file, c.name); n != nil {
			typeDecl, typeFile = n, c.file
			break
		}
	}

	props := map[string]component.PropDescriptor{}
	if typeDecl != nil {
		props = extractProps(typeFile, typeDecl)
	}

	if decl != nil {
		for name, value := range propDefaults(decl.file, decl.body) {
			prop, ok := props[name]
			if !ok {
				continue
			}
			prop.DefaultValue = component.StringPtr(value)
			props[name] = prop
		}
	}
	return props
}

// findInComponentFiles looks for a declaration of name in component files
// whose base name (or directory, for index files) matches the name.
func (p *pass) findInComponentFiles(name string) *declaration {
	if len(p.parser.opts.ComponentPatterns) == 0 {
		return nil
	}
	if p.componentIndex == nil {
		p.componentIndex = p.buildComponentIndex()
	}

	for _, rel := range p.componentIndex[strings.ToLower(name)] {
		f, err := p.cache.load(filepath.Join(p.parser.opts.RootDir, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if d := p.findDeclaration(f, name, 0); d != nil {
			return d
		}
	}
	return nil
}

func (p *pass) buildComponentIndex() map[string][]string {
	index := map[string][]string{}

	fd, err := NewFileDiscovery(p.parser.opts.RootDir, p.parser.opts.ComponentPatterns, p.parser.opts.IgnorePatterns)
	if err != nil {
		return index
	}
	files, err := fd.Discover()
	if err != nil {
		p.logger.Warn("Component discovery failed", "error", err)
		return index
	}

	for _, rel := range files {
		base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		if base == "index" {
			base = filepath.Base(filepath.Dir(rel))
		}
		key := strings.ToLower(base)
		index[key] = append(index[key], rel)
	}
	return index
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
