package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// resolveExtensions are tried in order when resolving a relative import.
var resolveExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// sourceFile is one parsed TypeScript/TSX file.
type sourceFile struct {
	path    string // absolute
	relPath string // relative to the project root, slash separated
	source  []byte
	tree    *sitter.Tree
	root    *sitter.Node
}

func (f *sourceFile) text(n *sitter.Node) string {
	return extractNodeText(n, f.source)
}

// sourceCache parses each file once per pass and owns the trees.
type sourceCache struct {
	rootDir  string
	language *sitter.Language
	files    map[string]*sourceFile
}

func newSourceCache(rootDir string) *sourceCache {
	return &sourceCache{
		rootDir:  rootDir,
		language: sitter.NewLanguage(typescript.LanguageTSX()),
		files:    make(map[string]*sourceFile),
	}
}

// load reads and parses path, returning the cached file on repeat calls.
func (c *sourceCache) load(path string) (*sourceFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if f, ok := c.files[abs]; ok {
		return f, nil
	}

	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	f, err := c.parse(abs, source)
	if err != nil {
		return nil, err
	}
	c.files[abs] = f
	return f, nil
}

// parse builds a sourceFile from in-memory source without touching disk.
func (c *sourceCache) parse(abs string, source []byte) (*sourceFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(c.language); err != nil {
		return nil, fmt.Errorf("failed to set TSX language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree for %s", abs)
	}

	return &sourceFile{
		path:    abs,
		relPath: c.relative(abs),
		source:  source,
		tree:    tree,
		root:    tree.RootNode(),
	}, nil
}

func (c *sourceCache) relative(abs string) string {
	if c.rootDir == "" {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(c.rootDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// close releases every parsed tree.
func (c *sourceCache) close() {
	for _, f := range c.files {
		f.tree.Close()
	}
	c.files = make(map[string]*sourceFile)
}

// resolveModule resolves a relative module specifier against the importing
// file. Bare package specifiers ("react") are not resolvable.
func resolveModule(fromFile, specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, ".") {
		return "", false
	}

	base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(specifier))

	candidates := []string{base}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
