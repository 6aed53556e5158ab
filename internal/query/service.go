package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/logging"
)

// Mode selects the search algorithm.
type Mode string

const (
	// ModeSubstring is the default: case-insensitive substring over name and
	// description with name matches ranked first.
	ModeSubstring Mode = "substring"
	// ModeFullText uses the bleve index.
	ModeFullText Mode = "fulltext"
)

// ErrInvalidMode is returned for an unknown search mode.
var ErrInvalidMode = errors.New("invalid search mode")

// ParseMode parses a mode name. Empty means ModeSubstring.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeFullText, "full-text", "full_text":
		return ModeFullText, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidMode, s, ModeSubstring, ModeFullText)
	}
}

// SearchRequest is one search against a snapshot.
type SearchRequest struct {
	Query    string
	Category string
	Mode     Mode
	Limit    int // 0 means no limit in substring mode, the default in full-text mode
}

// Service runs searches against snapshots and memoizes results.
type Service struct {
	cache  otter.Cache[string, []component.ComponentRecord]
	cached bool
	logger *log.Logger
}

// NewService creates a query service. cacheSize <= 0 disables the result cache.
func NewService(cacheSize int, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{logger: logger}
	if cacheSize <= 0 {
		return s, nil
	}

	cache, err := otter.MustBuilder[string, []component.ComponentRecord](cacheSize).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build search cache: %w", err)
	}
	s.cache = cache
	s.cached = true
	return s, nil
}

// cacheKey isolates entries per generation, so a new snapshot never reads
// results computed for an older one.
func cacheKey(snap *Snapshot, req SearchRequest) string {
	return strings.Join([]string{
		snap.GenerationID(),
		string(req.Mode),
		strings.ToLower(req.Category),
		strings.ToLower(strings.TrimSpace(req.Query)),
		fmt.Sprint(req.Limit),
	}, "|")
}

// Search runs req against snap.
func (s *Service) Search(snap *Snapshot, req SearchRequest) ([]component.ComponentRecord, error) {
	if req.Mode == "" {
		req.Mode = ModeSubstring
	}

	key := cacheKey(snap, req)
	if s.cached {
		if hit, ok := s.cache.Get(key); ok {
			return hit, nil
		}
	}

	var (
		results []component.ComponentRecord
		err     error
	)
	switch req.Mode {
	case ModeSubstring:
		results = snap.Search(req.Query, req.Category)
		if req.Limit > 0 && len(results) > req.Limit {
			results = results[:req.Limit]
		}
	case ModeFullText:
		results, err = snap.SearchFullText(req.Query, req.Category, req.Limit)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	if s.cached {
		s.cache.Set(key, results)
	}
	s.logger.Debug("Search", "mode", req.Mode, "query", req.Query, "category", req.Category, "results", len(results))
	return results, nil
}

// CacheStats returns hit and miss counts of the result cache.
func (s *Service) CacheStats() (hits, misses int64) {
	if !s.cached {
		return 0, 0
	}
	stats := s.cache.Stats()
	return stats.Hits(), stats.Misses()
}

// Close releases the cache.
func (s *Service) Close() {
	if s.cached {
		s.cache.Close()
	}
}
