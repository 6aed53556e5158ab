// Package query answers read-only questions about one generation of
// component records.
//
// A Snapshot is immutable once built. Callers swap whole snapshots when a
// sync completes, so a query always sees a single generation.
package query

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"

	"github.com/mvp-joe/component-atlas/internal/component"
)

// Snapshot is one loaded generation.
type Snapshot struct {
	records      []component.ComponentRecord
	byName       map[string]int // lowercase name -> index into records
	lowerDesc    []string
	generationID string
	loadedAt     time.Time

	fullText    sync.Once
	fullTextIdx bleve.Index
	fullTextErr error
}

// CategoryCount is the number of records in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// NewSnapshot builds a snapshot over records in manifest order. An empty
// generationID gets a fresh one.
func NewSnapshot(records []component.ComponentRecord, generationID string) *Snapshot {
	if generationID == "" {
		generationID = uuid.NewString()
	}

	s := &Snapshot{
		records:      make([]component.ComponentRecord, len(records)),
		byName:       make(map[string]int, len(records)),
		lowerDesc:    make([]string, len(records)),
		generationID: generationID,
		loadedAt:     time.Now(),
	}
	for i, r := range records {
		s.records[i] = component.Normalize(r)
		s.lowerDesc[i] = strings.ToLower(r.Description)
		if _, ok := s.byName[strings.ToLower(r.Name)]; !ok {
			s.byName[strings.ToLower(r.Name)] = i
		}
	}
	return s
}

// GenerationID identifies the generation this snapshot was built from.
func (s *Snapshot) GenerationID() string {
	return s.generationID
}

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// ListAll returns every record in manifest order.
func (s *Snapshot) ListAll() []component.ComponentRecord {
	out := make([]component.ComponentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ListCategory returns the records of one category (case-insensitive) in
// manifest order. An empty category lists everything.
func (s *Snapshot) ListCategory(category string) []component.ComponentRecord {
	if category == "" {
		return s.ListAll()
	}
	out := []component.ComponentRecord{}
	for _, r := range s.records {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}

// GetByName looks a record up by case-insensitive exact name.
func (s *Snapshot) GetByName(name string) (component.ComponentRecord, bool) {
	i, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return component.ComponentRecord{}, false
	}
	return s.records[i], true
}

// Search matches query as a case-insensitive substring of the name or the
// description, optionally restricted to a category. Name matches rank ahead
// of description matches; ties keep manifest order. An empty query returns
// the category listing.
func (s *Snapshot) Search(query, category string) []component.ComponentRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.ListCategory(category)
	}

	type hit struct {
		index int
		rank  int
	}
	var hits []hit
	for i, r := range s.records {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		switch {
		case strings.Contains(strings.ToLower(r.Name), q):
			hits = append(hits, hit{index: i, rank: 0})
		case strings.Contains(s.lowerDesc[i], q):
			hits = append(hits, hit{index: i, rank: 1})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].rank < hits[b].rank
	})

	out := make([]component.ComponentRecord, len(hits))
	for i, h := range hits {
		out[i] = s.records[h.index]
	}
	return out
}

// Categories returns the categories present in the snapshot with their
// record counts, in category display order.
func (s *Snapshot) Categories() []CategoryCount {
	counts := map[string]int{}
	for _, r := range s.records {
		counts[r.Category]++
	}

	out := []CategoryCount{}
	for _, c := range component.Categories() {
		if n := counts[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Count: n})
			delete(counts, c)
		}
	}
	// Categories outside the closed set can only come from a hand-edited store.
	var extra []string
	for c := range counts {
		extra = append(extra, c)
	}
	sort.Strings(extra)
	for _, c := range extra {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}

// Close releases the full-text index, if one was built.
func (s *Snapshot) Close() error {
	if s.fullTextIdx != nil {
		return s.fullTextIdx.Close()
	}
	return nil
}
