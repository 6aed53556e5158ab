package mcp

import (
	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/query"
)

// ListComponentsRequest is the list_components input.
type ListComponentsRequest struct {
	Category string `json:"category,omitempty"`
}

// ListComponentsResponse is the list_components output.
type ListComponentsResponse struct {
	Components   []component.ComponentRecord `json:"components"`
	Total        int                         `json:"total"`
	Categories   []query.CategoryCount       `json:"categories"`
	GenerationID string                      `json:"generationId"`
}

// GetComponentRequest is the get_component input.
type GetComponentRequest struct {
	Name string `json:"name" mcp:"required"`
}

// ComponentNotFound is returned by get_component for an unknown name. It is
// a normal result, not a tool error.
type ComponentNotFound struct {
	Found       bool     `json:"found"`
	Name        string   `json:"name"`
	Suggestions []string `json:"suggestions"`
}

// SearchComponentsRequest is the search_components input.
type SearchComponentsRequest struct {
	Query    string `json:"query" mcp:"required"`
	Category string `json:"category,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// SearchComponentsResponse is the search_components output.
type SearchComponentsResponse struct {
	Components []component.ComponentRecord `json:"components"`
	Total      int                         `json:"total"`
	Mode       query.Mode                  `json:"mode"`
}

// SyncMetadataRequest is the sync_metadata input.
type SyncMetadataRequest struct {
	Force bool `json:"force,omitempty"`
}
