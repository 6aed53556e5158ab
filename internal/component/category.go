package component

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Closed category set.
const (
	CategoryLayout      = "Layout"
	CategoryForms       = "Forms"
	CategoryFeedback    = "Feedback"
	CategoryInteractive = "Interactive"
	CategoryDataDisplay = "Data Display"
	CategoryNavigation  = "Navigation"
	CategoryOverlay     = "Overlay"
	CategoryTypography  = "Typography"
	CategoryMedia       = "Media"
	CategoryOther       = "Other"
)

var categories = []string{
	CategoryLayout,
	CategoryForms,
	CategoryFeedback,
	CategoryInteractive,
	CategoryDataDisplay,
	CategoryNavigation,
	CategoryOverlay,
	CategoryTypography,
	CategoryMedia,
	CategoryOther,
}

// Categories returns the closed category set in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// CanonicalCategory maps a case-insensitive category name to its canonical
// spelling. The second return is false for unknown categories.
func CanonicalCategory(name string) (string, bool) {
	for _, c := range categories {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return "", false
}

// CategoryRule is one classifier predicate. A record matches when its name
// contains any of NameContains (case-insensitive) or its source path matches
// any of PathGlobs.
type CategoryRule struct {
	Category     string   `yaml:"category" mapstructure:"category"`
	NameContains []string `yaml:"name_contains" mapstructure:"name_contains"`
	PathGlobs    []string `yaml:"path_globs" mapstructure:"path_globs"`
}

// DefaultRules returns the built-in rule list. Order matters: the first
// matching rule wins, so e.g. Forms precedes Layout ("Checkbox" vs "Box")
// and Data Display precedes Navigation ("Table" vs "Tab").
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{
			Category:     CategoryForms,
			NameContains: []string{"Input", "Select", "Checkbox", "Radio", "Switch", "Slider", "Form", "Textarea", "TextField", "Field", "Label", "Picker", "Combobox", "Upload"},
			PathGlobs:    []string{"**/forms/**"},
		},
		{
			Category:     CategoryOverlay,
			NameContains: []string{"Modal", "Dialog", "Drawer", "Popover", "Tooltip", "Sheet", "HoverCard", "Overlay"},
			PathGlobs:    []string{"**/overlay/**", "**/overlays/**"},
		},
		{
			Category:     CategoryFeedback,
			NameContains: []string{"Alert", "Toast", "Spinner", "Progress", "Skeleton", "Loader", "Loading", "Notification", "Banner", "Snackbar"},
			PathGlobs:    []string{"**/feedback/**"},
		},
		{
			Category:     CategoryDataDisplay,
			NameContains: []string{"Table", "List", "Badge", "Avatar", "Card", "Chart", "Tag", "Chip", "Timeline", "Tree", "Calendar", "Statistic"},
			PathGlobs:    []string{"**/data-display/**", "**/data/**"},
		},
		{
			Category:     CategoryNavigation,
			NameContains: []string{"Nav", "Menu", "Tab", "Breadcrumb", "Pagination", "Link", "Sidebar", "Stepper", "Steps"},
			PathGlobs:    []string{"**/navigation/**"},
		},
		{
			Category:     CategoryInteractive,
			NameContains: []string{"Button", "Toggle", "Accordion", "Collapsible", "Carousel", "Dropdown", "Command", "Rating"},
			PathGlobs:    []string{"**/interactive/**"},
		},
		{
			Category:     CategoryTypography,
			NameContains: []string{"Text", "Heading", "Title", "Paragraph", "Code", "Kbd", "Typography", "Blockquote"},
			PathGlobs:    []string{"**/typography/**"},
		},
		{
			Category:     CategoryMedia,
			NameContains: []string{"Image", "Icon", "Video", "Audio", "Logo", "Illustration"},
			PathGlobs:    []string{"**/media/**"},
		},
		{
			Category:     CategoryLayout,
			NameContains: []string{"Grid", "Stack", "Box", "Container", "Flex", "Divider", "Separator", "Spacer", "Layout", "Section", "AspectRatio", "ScrollArea", "Resizable", "Center"},
			PathGlobs:    []string{"**/layout/**"},
		},
	}
}

// Rule is a compiled CategoryRule.
type Rule struct {
	category string
	names    []string
	globs    []glob.Glob
}

// Category returns the category the rule assigns.
func (r *Rule) Category() string {
	return r.category
}

// Match reports whether the rule applies to a component name and source path.
func (r *Rule) Match(name, sourcePath string) bool {
	lower := strings.ToLower(name)
	for _, n := range r.names {
		if strings.Contains(lower, n) {
			return true
		}
	}

	if sourcePath == "" {
		return false
	}
	path := filepath.ToSlash(sourcePath)
	for _, g := range r.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// CompileRule validates and compiles a single rule.
func CompileRule(rule CategoryRule) (*Rule, error) {
	category, ok := CanonicalCategory(rule.Category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", rule.Category)
	}

	compiled := &Rule{category: category}
	for _, n := range rule.NameContains {
		if n = strings.TrimSpace(n); n != "" {
			compiled.names = append(compiled.names, strings.ToLower(n))
		}
	}
	for _, pattern := range rule.PathGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid path glob %q: %w", pattern, err)
		}
		compiled.globs = append(compiled.globs, g)
	}

	return compiled, nil
}

// Classifier assigns a category to a component using an ordered rule list.
type Classifier struct {
	rules []*Rule
}

// NewClassifier builds a classifier from extra rules followed by the defaults.
func NewClassifier(extra []CategoryRule) (*Classifier, error) {
	all := append(append([]CategoryRule{}, extra...), DefaultRules()...)

	c := &Classifier{rules: make([]*Rule, 0, len(all))}
	for i, rule := range all {
		compiled, err := CompileRule(rule)
		if err != nil {
			return nil, fmt.Errorf("category rule %d: %w", i, err)
		}
		c.rules = append(c.rules, compiled)
	}
	return c, nil
}

// Rules returns the compiled rules in evaluation order.
func (c *Classifier) Rules() []*Rule {
	return c.rules
}

// Classify returns the category of the first matching rule, or Other.
func (c *Classifier) Classify(name, sourcePath string) string {
	for _, rule := range c.rules {
		if rule.Match(name, sourcePath) {
			return rule.category
		}
	}
	return CategoryOther
}
