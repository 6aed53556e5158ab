package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/component-atlas/internal/component"
)

// Test Plan for Parser:
// - Fixture project: recognized records in manifest order
// - Type-only, namespace, non-PascalCase exports are skipped with warnings
// - export type { A, B } skips each name
// - Malformed doc frontmatter is a warning, not an error
// - JSDoc description on the declaration; manifest comment wins over it
// - Sub-components from Name.Member assignments and Object.assign
// - Props: optional marker, member comments, defaults, extends not followed
// - Intersection type aliases keep only the literal members
// - Default re-export resolves to the named function
// - Doc frontmatter overrides category and fills an empty description
// - Barrel cycles and unresolvable modules become warnings, not errors
// - Duplicate names are kept in order
// - Missing manifest is ErrParseFailure
// - Every recognized record has a category
// - Progress callbacks fire in order

func newFixtureParser(t *testing.T, progress ProgressReporter) *Parser {
	t.Helper()
	p, err := New(Options{
		RootDir:           "../../testdata/ui",
		Manifest:          "src/index.ts",
		ComponentPatterns: []string{"src/**/*.tsx"},
		DocPatterns:       []string{"docs/**/*.md"},
		IgnorePatterns:    []string{"node_modules/**"},
		Progress:          progress,
	})
	require.NoError(t, err)
	return p
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func parseProject(t *testing.T, files map[string]string) *Result {
	t.Helper()
	root := writeFiles(t, files)
	p, err := New(Options{RootDir: root, Manifest: "src/index.ts", ComponentPatterns: []string{"src/**/*.tsx"}})
	require.NoError(t, err)

	result, err := p.Parse(context.Background())
	require.NoError(t, err)
	return result
}

func recordByName(t *testing.T, result *Result, name string) component.ComponentRecord {
	t.Helper()
	for _, r := range result.Records() {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "record not found", "no record named %s", name)
	return component.ComponentRecord{}
}

func TestParser_FixtureProject(t *testing.T) {
	t.Parallel()

	result, err := newFixtureParser(t, nil).Parse(context.Background())
	require.NoError(t, err)

	var names []string
	for _, r := range result.Records() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Button", "Card", "Table", "Tabs", "Input", "Checkbox"}, names)

	recognized, skipped := result.Counts()
	assert.Equal(t, 6, recognized)
	assert.Equal(t, 6, skipped)

	skippedNames := map[string]string{}
	for _, o := range result.Outcomes {
		if o.Kind == Skipped {
			skippedNames[o.Name] = o.Reason
		}
	}
	assert.Equal(t, "type-only export", skippedNames["ButtonProps"])
	assert.Equal(t, "type-only export", skippedNames["InputProps"])
	assert.Equal(t, "type-only export", skippedNames["CheckboxProps"])
	assert.Equal(t, "namespace re-export", skippedNames["icons"])
	assert.Equal(t, "not a component name", skippedNames["THEME_VERSION"])
	assert.Equal(t, "not a component name", skippedNames["useToast"])

	assert.Len(t, result.Warnings, 6, "one warning per skipped export")
}

func TestParser_Button(t *testing.T) {
	t.Parallel()

	result, err := newFixtureParser(t, nil).Parse(context.Background())
	require.NoError(t, err)

	button := recordByName(t, result, "Button")
	assert.Equal(t, component.CategoryInteractive, button.Category)
	assert.Equal(t, "Triggers an action when pressed.", button.Description)
	assert.Equal(t, "src/components/Button.tsx", button.SourcePath)
	assert.Empty(t, button.SubComponents)

	require.Len(t, button.Props, 4)

	variant := button.Props["variant"]
	assert.Equal(t, "'primary' | 'secondary'", variant.Type)
	assert.False(t, variant.Required)
	require.NotNil(t, variant.DefaultValue)
	assert.Equal(t, "'primary'", *variant.DefaultValue)
	require.NotNil(t, variant.Description)
	assert.Equal(t, "Visual style of the button.", *variant.Description)

	size := button.Props["size"]
	require.NotNil(t, size.DefaultValue)
	assert.Equal(t, "'md'", *size.DefaultValue)
	assert.Nil(t, size.Description)

	onClick := button.Props["onClick"]
	assert.Equal(t, "() => void", onClick.Type)
	assert.True(t, onClick.Required)
	assert.Nil(t, onClick.DefaultValue)
}

func TestParser_DefaultReexportAndDocOverride(t *testing.T) {
	t.Parallel()

	result, err := newFixtureParser(t, nil).Parse(context.Background())
	require.NoError(t, err)

	card := recordByName(t, result, "Card")
	assert.Equal(t, component.CategoryLayout, card.Category, "doc frontmatter replaces the classifier category")
	assert.Equal(t, "Groups related content in a bordered surface.", card.Description)
	assert.Equal(t, "src/components/Card.tsx", card.SourcePath)

	require.Contains(t, card.Props, "title")
	assert.True(t, card.Props["title"].Required)
	assert.False(t, card.Props["children"].Required)
}

func TestParser_SubComponents(t *testing.T) {
	t.Parallel()

	result, err := newFixtureParser(t, nil).Parse(context.Background())
	require.NoError(t, err)

	table := recordByName(t, result, "Table")
	assert.Equal(t, []string{"Header", "Row"}, table.SubComponents)
	assert.Equal(t, component.CategoryDataDisplay, table.Category)
	assert.Equal(t, "Tabular data with header and rows.", table.Description)
	require.NotNil(t, table.Props["borderless"].DefaultValue)
	assert.Equal(t, "false", *table.Props["borderless"].DefaultValue)
	require.NotNil(t, table.Props["borderless"].Description)
	assert.Equal(t, "Rows rendered without borders.", *table.Props["borderless"].Description)

	tabs := recordByName(t, result, "Tabs")
	assert.Equal(t, []string{"List", "Panel"}, tabs.SubComponents)
	assert.Equal(t, component.CategoryNavigation, tabs.Category)
	assert.Equal(t, "Switch between related views.", tabs.Description, "manifest comment wins")
	assert.Contains(t, tabs.Props, "defaultValue")
}

func TestParser_BarrelProps(t *testing.T) {
	t.Parallel()

	result, err := newFixtureParser(t, nil).Parse(context.Background())
	require.NoError(t, err)

	input := recordByName(t, result, "Input")
	assert.Equal(t, component.CategoryForms, input.Category)
	assert.Equal(t, "src/forms/Input.tsx", input.SourcePath)
	assert.Len(t, input.Props, 2, "only literal members of the intersection")
	assert.Equal(t, "string", input.Props["value"].Type)
	assert.Equal(t, "(value: string) => void", input.Props["onChange"].Type)
	require.NotNil(t, input.Props["onChange"].Description)
	assert.Equal(t, "Called on every keystroke.", *input.Props["onChange"].Description)

	checkbox := recordByName(t, result, "Checkbox")
	assert.Len(t, checkbox.Props, 1, "extends clause is not followed")
	require.NotNil(t, checkbox.Props["checked"].DefaultValue)
	assert.Equal(t, "false", *checkbox.Props["checked"].DefaultValue)
}

func TestParser_CategoryNeverEmpty(t *testing.T) {
	t.Parallel()

	result := parseProject(t, map[string]string{
		"src/index.ts": `export const Widget = () => null;
export const Gizmo = () => null;
`,
	})

	for _, r := range result.Records() {
		assert.Equal(t, component.CategoryOther, r.Category, r.Name)
		assert.NotNil(t, r.Props)
		assert.NotNil(t, r.SubComponents)
	}
	assert.Len(t, result.Records(), 2)
}

func TestParser_ExportForms(t *testing.T) {
	t.Parallel()

	result := parseProject(t, map[string]string{
		"src/index.ts": `function Badge() { return null; }
class Modal {}
const Grid = () => null;
export { Badge, Modal as Dialog };
export function Spinner() { return null; }
export default Grid;
export const a = 1, Avatar = () => null;
export enum Size { Small, Large }
export default () => null;
`,
	})

	var names []string
	for _, r := range result.Records() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Badge", "Dialog", "Spinner", "Grid", "Avatar"}, names)

	dialog := recordByName(t, result, "Dialog")
	assert.Equal(t, component.CategoryOverlay, dialog.Category)

	reasons := map[string]bool{}
	for _, o := range result.Outcomes {
		if o.Kind == Skipped {
			reasons[o.Reason] = true
		}
	}
	assert.True(t, reasons["not a component name"])
	assert.True(t, reasons["unsupported declaration enum_declaration"])
	assert.True(t, reasons["default export of an expression"])
}

func TestParser_TypeOnlyClause(t *testing.T) {
	t.Parallel()

	result := parseProject(t, map[string]string{
		"src/index.ts": `export type { ButtonProps, ButtonSize } from './Button';
`,
		"src/Button.tsx": `export interface ButtonProps { label: string }
export type ButtonSize = 'sm' | 'lg';
`,
	})

	require.Len(t, result.Outcomes, 2)
	for i, name := range []string{"ButtonProps", "ButtonSize"} {
		assert.Equal(t, Skipped, result.Outcomes[i].Kind)
		assert.Equal(t, name, result.Outcomes[i].Name)
		assert.Equal(t, "type-only export", result.Outcomes[i].Reason)
	}

	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "skipped export ButtonProps: type-only export", result.Warnings[0].Message)
	assert.Equal(t, "skipped export ButtonSize: type-only export", result.Warnings[1].Message)
}

func TestLoadDocIndex_InvalidFrontmatter(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"docs/button.md": "---\ncomponent: Button\ncategory: Forms\n---\n# Button\n",
		"docs/broken.md": "---\ncomponent: [Card\n---\n# Card\n",
		"docs/plain.md":  "# No frontmatter\n",
	})

	idx, warnings, err := LoadDocIndex(root, []string{"docs/**/*.md"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len())
	_, ok := idx.Lookup("button")
	assert.True(t, ok)

	require.Len(t, warnings, 1)
	assert.Equal(t, "docs/broken.md", warnings[0].File)
	assert.Contains(t, warnings[0].Message, "invalid frontmatter")
}

func TestParser_DuplicateNamesKept(t *testing.T) {
	t.Parallel()

	result := parseProject(t, map[string]string{
		"src/index.ts": `/** First. */
export { Button } from './a/Button';
/** Second. */
export { Button } from './b/Button';
`,
		"src/a/Button.tsx": "export const Button = () => null;\n",
		"src/b/Button.tsx": "export const Button = () => null;\n",
	})

	records := result.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "First.", records[0].Description)
	assert.Equal(t, "src/a/Button.tsx", records[0].SourcePath)
	assert.Equal(t, "Second.", records[1].Description)
	assert.Equal(t, "src/b/Button.tsx", records[1].SourcePath)
}

func TestParser_BarrelCycle(t *testing.T) {
	t.Parallel()

	result := parseProject(t, map[string]string{
		"src/index.ts":         "export * from './forms';\n",
		"src/forms/index.ts":   "export * from '../index';\nexport * from './Select';\n",
		"src/forms/Select.tsx": "export const Select = () => null;\n",
	})

	records := result.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Select", records[0].Name)

	var cycle bool
	for _, w := range result.Warnings {
		if w.File == "src/forms/index.ts" && w.Line == 1 {
			cycle = true
			assert.Contains(t, w.Message, "circular re-export")
		}
	}
	assert.True(t, cycle, "cycle reported as a warning: %v", result.Warnings)
}

func TestParser_UnresolvableModule(t *testing.T) {
	t.Parallel()

	result := parseProject(t, map[string]string{
		"src/index.ts": `export { Ghost } from './missing/Ghost';
export * from './nowhere';
`,
	})

	// The record still exists, anchored to the manifest.
	ghost := recordByName(t, result, "Ghost")
	assert.Equal(t, "src/index.ts", ghost.SourcePath)
	assert.Empty(t, ghost.Props)

	recognized, skipped := result.Counts()
	assert.Equal(t, 1, recognized)
	assert.Equal(t, 1, skipped)
	assert.NotEmpty(t, result.Warnings)
}

func TestParser_ComponentFileFallback(t *testing.T) {
	t.Parallel()

	// Props live next to the component file; the manifest exports a local alias.
	result := parseProject(t, map[string]string{
		"src/index.ts": "export { Avatar } from './external';\n",
		"src/components/Avatar/index.tsx": `export interface AvatarProps { src: string; alt?: string }
export const Avatar = ({ alt = '' }: AvatarProps) => null;
`,
	})

	avatar := recordByName(t, result, "Avatar")
	assert.Equal(t, "src/components/Avatar/index.tsx", avatar.SourcePath)
	require.Len(t, avatar.Props, 2)
	require.NotNil(t, avatar.Props["alt"].DefaultValue)
	assert.Equal(t, "''", *avatar.Props["alt"].DefaultValue)
}

func TestParser_MissingManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p, err := New(Options{RootDir: root, Manifest: "src/index.ts"})
	require.NoError(t, err)

	_, err = p.Parse(context.Background())
	require.ErrorIs(t, err, ErrParseFailure)
}

func TestParser_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFixtureParser(t, nil).Parse(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParser_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Options{ComponentPatterns: []string{"src/[.tsx"}})
	require.Error(t, err)
}

type recordingProgress struct {
	total     int
	exports   []string
	completed bool
	counts    [2]int
}

func (r *recordingProgress) OnParseStart(total int)     { r.total = total }
func (r *recordingProgress) OnExportParsed(name string) { r.exports = append(r.exports, name) }
func (r *recordingProgress) OnParseComplete(recognized, skipped int) {
	r.completed = true
	r.counts = [2]int{recognized, skipped}
}

func TestParser_Progress(t *testing.T) {
	t.Parallel()

	progress := &recordingProgress{}
	_, err := newFixtureParser(t, progress).Parse(context.Background())
	require.NoError(t, err)

	// One callback per manifest statement; the forms barrel expands to both inputs.
	assert.Equal(t, 9, progress.total)
	assert.Len(t, progress.exports, 9)
	assert.Contains(t, progress.exports, "InputProps, Input, CheckboxProps, Checkbox")
	assert.True(t, progress.completed)
	assert.Equal(t, [2]int{6, 6}, progress.counts)
}

func TestIsComponentName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"Button", true},
		{"X", true},
		{"IconButton", true},
		{"useToast", false},
		{"THEME_VERSION", false},
		{"API", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isComponentName(tt.name))
		})
	}
}

func TestCleanComment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Line one line two", cleanComment("/**\n * Line one\n * line two\n * @deprecated\n */"))
	assert.Equal(t, "Short.", cleanComment("// Short."))
	assert.Equal(t, "", cleanComment(""))
}
