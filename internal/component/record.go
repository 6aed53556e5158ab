package component

// Implementation Plan:
// 1. ComponentRecord / PropDescriptor - the persisted metadata shape (camelCase JSON)
// 2. Normalize - never-nil collections and a guaranteed category
// 3. Equal - deep equality used by the sync diff
// 4. Dedupe - last-write-wins collapse of duplicate names

import "strings"

// ComponentRecord describes one exported UI component.
type ComponentRecord struct {
	Name          string                    `json:"name"`
	Category      string                    `json:"category"`
	Description   string                    `json:"description"`
	SubComponents []string                  `json:"subComponents"`
	Props         map[string]PropDescriptor `json:"props"`
	SourcePath    string                    `json:"sourcePath,omitempty"`
}

// PropDescriptor is the simplified shape of a single declared prop.
type PropDescriptor struct {
	Type         string  `json:"type"`
	Required     bool    `json:"required"`
	DefaultValue *string `json:"defaultValue,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// Normalize returns a copy of r with non-nil collections and a non-empty category.
func Normalize(r ComponentRecord) ComponentRecord {
	if r.SubComponents == nil {
		r.SubComponents = []string{}
	}
	if r.Props == nil {
		r.Props = map[string]PropDescriptor{}
	}
	if strings.TrimSpace(r.Category) == "" {
		r.Category = CategoryOther
	}
	return r
}

// Equal reports whether two records are structurally identical.
// Sub-component order is significant; props are compared by key.
func Equal(a, b ComponentRecord) bool {
	if a.Name != b.Name ||
		a.Category != b.Category ||
		a.Description != b.Description ||
		a.SourcePath != b.SourcePath {
		return false
	}

	if len(a.SubComponents) != len(b.SubComponents) {
		return false
	}
	for i := range a.SubComponents {
		if a.SubComponents[i] != b.SubComponents[i] {
			return false
		}
	}

	if len(a.Props) != len(b.Props) {
		return false
	}
	for name, pa := range a.Props {
		pb, ok := b.Props[name]
		if !ok || !propEqual(pa, pb) {
			return false
		}
	}

	return true
}

func propEqual(a, b PropDescriptor) bool {
	return a.Type == b.Type &&
		a.Required == b.Required &&
		optionalEqual(a.DefaultValue, b.DefaultValue) &&
		optionalEqual(a.Description, b.Description)
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Dedupe collapses duplicate names. The last definition wins but keeps the
// position of the first occurrence, so manifest order stays stable.
func Dedupe(records []ComponentRecord) []ComponentRecord {
	index := make(map[string]int, len(records))
	out := make([]ComponentRecord, 0, len(records))

	for _, r := range records {
		if i, ok := index[r.Name]; ok {
			out[i] = r
			continue
		}
		index[r.Name] = len(out)
		out = append(out, r)
	}

	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
