package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/mvp-joe/component-atlas/internal/component"
)

// DocFrontmatter is the YAML frontmatter a component doc page may carry.
type DocFrontmatter struct {
	Component   string `yaml:"component"`
	Category    string `yaml:"category,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// DocOverride is an authored correction for one component.
type DocOverride struct {
	Component   string
	Category    string // canonical category, or "" to keep the classifier's
	Description string
	File        string
}

// DocIndex holds overrides keyed by lowercase component name.
type DocIndex struct {
	overrides map[string]DocOverride
}

// LoadDocIndex reads every file under rootDir matching the doc globs and
// collects frontmatter overrides. Files without frontmatter or without a
// component key are ignored; malformed frontmatter and unknown categories
// become warnings.
func LoadDocIndex(rootDir string, docPatterns, ignorePatterns []string) (*DocIndex, []Warning, error) {
	idx := &DocIndex{overrides: make(map[string]DocOverride)}
	if len(docPatterns) == 0 {
		return idx, nil, nil
	}

	fd, err := NewFileDiscovery(rootDir, docPatterns, ignorePatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid docs pattern: %w", err)
	}
	files, err := fd.Discover()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover docs: %w", err)
	}

	var warnings []Warning
	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(rootDir, filepath.FromSlash(rel)))
		if err != nil {
			warnings = append(warnings, Warning{File: rel, Message: fmt.Sprintf("cannot read doc: %v", err)})
			continue
		}

		var matter DocFrontmatter
		if _, err := frontmatter.Parse(bytes.NewReader(content), &matter); err != nil {
			warnings = append(warnings, Warning{File: rel, Message: fmt.Sprintf("invalid frontmatter: %v", err)})
			continue
		}
		name := strings.TrimSpace(matter.Component)
		if name == "" {
			continue
		}

		override := DocOverride{
			Component:   name,
			Description: strings.TrimSpace(matter.Description),
			File:        rel,
		}
		if matter.Category != "" {
			category, ok := component.CanonicalCategory(matter.Category)
			if !ok {
				warnings = append(warnings, Warning{File: rel, Message: fmt.Sprintf("unknown category %q for %s", matter.Category, name)})
			} else {
				override.Category = category
			}
		}
		idx.overrides[strings.ToLower(name)] = override
	}

	return idx, warnings, nil
}

// Lookup returns the override for a component, if any.
func (d *DocIndex) Lookup(name string) (DocOverride, bool) {
	if d == nil {
		return DocOverride{}, false
	}
	o, ok := d.overrides[strings.ToLower(name)]
	return o, ok
}

// Len returns the number of overrides.
func (d *DocIndex) Len() int {
	if d == nil {
		return 0
	}
	return len(d.overrides)
}

// Apply replaces the category and fills an empty description.
func (d *DocIndex) Apply(r component.ComponentRecord) component.ComponentRecord {
	o, ok := d.Lookup(r.Name)
	if !ok {
		return r
	}
	if o.Category != "" {
		r.Category = o.Category
	}
	if r.Description == "" && o.Description != "" {
		r.Description = o.Description
	}
	return r
}
