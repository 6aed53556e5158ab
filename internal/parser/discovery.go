package parser

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob. alt is the
// zero-directory form of a "**/" pattern, so "src/**/*.tsx" also matches
// "src/Button.tsx".
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	alt     glob.Glob
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		if simplified := collapseDoubleStar(pattern); simplified != pattern {
			if alt, err := glob.Compile(simplified, '/'); err == nil {
				cp.alt = alt
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// collapseDoubleStar removes "**/" path segments: "src/**/*.tsx" -> "src/*.tsx".
func collapseDoubleStar(pattern string) string {
	collapsed := strings.ReplaceAll(pattern, "/**/", "/")
	return strings.TrimPrefix(collapsed, "**/")
}

func (cp compiledPattern) match(path string) bool {
	if cp.glob.Match(path) {
		return true
	}
	return cp.alt != nil && cp.alt.Match(path)
}

// FileDiscovery finds project files matching include globs and not matching
// ignore globs. Paths are matched relative to the root with forward slashes.
type FileDiscovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	includes, err := compilePatterns(includePatterns)
	if err != nil {
		return nil, err
	}
	ignores, err := compilePatterns(ignorePatterns)
	if err != nil {
		return nil, err
	}

	return &FileDiscovery{
		rootDir:        rootDir,
		includes:       includes,
		ignorePatterns: ignores,
	}, nil
}

// Discover walks the root and returns matching files as relative slash paths.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}
	if len(fd.includes) == 0 {
		return files, nil
	}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.shouldIgnore(relPath) {
			return nil
		}
		if fd.matchesAny(relPath, fd.includes) {
			files = append(files, relPath)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return files, nil
	}

	return files, err
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	// Always ignore .atlas and .git directories
	if relPath == ".atlas" || strings.HasPrefix(relPath, ".atlas/") ||
		relPath == ".git" || strings.HasPrefix(relPath, ".git/") {
		return true
	}

	if fd.matchesAny(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return fd.matchesAny(relPath+"/**", fd.ignorePatterns)
}

func (fd *FileDiscovery) matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.match(path) {
			return true
		}
	}
	return false
}
