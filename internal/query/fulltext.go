package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/component-atlas/internal/component"
)

const (
	defaultFullTextLimit = 15
	maxFullTextLimit     = 100
)

// SearchFullText runs a bleve query-string search over name, description,
// sub-components and prop names. Supports field scoping (props:variant),
// boolean operators, phrases, wildcards and fuzzy terms. Results come back in
// score order. The index is built on first use.
func (s *Snapshot) SearchFullText(queryStr, category string, limit int) ([]component.ComponentRecord, error) {
	if limit <= 0 {
		limit = defaultFullTextLimit
	}
	if limit > maxFullTextLimit {
		limit = maxFullTextLimit
	}
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		records := s.ListCategory(category)
		if len(records) > limit {
			records = records[:limit]
		}
		return records, nil
	}

	index, err := s.fullTextIndex()
	if err != nil {
		return nil, err
	}

	var finalQuery query.Query = bleve.NewQueryStringQuery(queryStr)
	if category != "" {
		categoryQuery := bleve.NewTermQuery(strings.ToLower(category))
		categoryQuery.SetField("category")
		finalQuery = bleve.NewConjunctionQuery(finalQuery, categoryQuery)
	}

	request := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	result, err := index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	out := make([]component.ComponentRecord, 0, len(result.Hits))
	for _, hit := range result.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(s.records) {
			continue
		}
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *Snapshot) fullTextIndex() (bleve.Index, error) {
	s.fullText.Do(func() {
		index, err := bleve.NewMemOnly(buildBleveMapping())
		if err != nil {
			s.fullTextErr = fmt.Errorf("failed to create bleve index: %w", err)
			return
		}
		if err := indexRecords(index, s.records); err != nil {
			index.Close()
			s.fullTextErr = fmt.Errorf("failed to index components: %w", err)
			return
		}
		s.fullTextIdx = index
	})
	return s.fullTextIdx, s.fullTextErr
}

// buildBleveMapping creates the index mapping for component documents.
func buildBleveMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = false
		m.Index = true
		return m
	}

	// Category is filtered exactly, so it is indexed as a single lowercase term.
	categoryMapping := bleve.NewTextFieldMapping()
	categoryMapping.Analyzer = "keyword"
	categoryMapping.Store = false
	categoryMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", text())
	docMapping.AddFieldMappingsAt("words", text())
	docMapping.AddFieldMappingsAt("description", text())
	docMapping.AddFieldMappingsAt("sub_components", text())
	docMapping.AddFieldMappingsAt("props", text())
	docMapping.AddFieldMappingsAt("category", categoryMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func indexRecords(index bleve.Index, records []component.ComponentRecord) error {
	batch := index.NewBatch()
	for i, r := range records {
		if err := batch.Index(strconv.Itoa(i), recordToDocument(r)); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", r.Name, err)
		}
	}
	return index.Batch(batch)
}

func recordToDocument(r component.ComponentRecord) map[string]interface{} {
	props := make([]string, 0, len(r.Props))
	for name := range r.Props {
		props = append(props, name)
	}

	return map[string]interface{}{
		"name":           r.Name,
		"words":          strings.Join(splitWords(r.Name), " "),
		"description":    r.Description,
		"sub_components": r.SubComponents,
		"props":          props,
		"category":       strings.ToLower(r.Category),
	}
}

// splitWords breaks a PascalCase identifier into words: "IconButton" ->
// ["Icon", "Button"]. Acronym runs stay together: "HTMLInput" -> ["HTML", "Input"].
func splitWords(name string) []string {
	runes := []rune(name)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}
