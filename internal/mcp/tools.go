package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/query"
	"github.com/mvp-joe/component-atlas/internal/syncer"
)

const maxSuggestions = 5

// SnapshotProvider returns the current generation. *discovery.Bootstrapper
// implements it.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*query.Snapshot, error)
}

// Refresher runs an explicit sync. *discovery.Bootstrapper implements it.
type Refresher interface {
	Refresh(ctx context.Context, force bool) (*syncer.SyncReport, error)
}

func categoryDescription(prefix string) string {
	return fmt.Sprintf("%s One of: %s.", prefix, strings.Join(component.Categories(), ", "))
}

// AddListComponentsTool registers the list_components tool.
func AddListComponentsTool(s *server.MCPServer, provider SnapshotProvider) {
	tool := mcp.NewTool(
		"list_components",
		mcp.WithDescription("List every UI component in the design system in source manifest order, with per-category counts."),
		mcp.WithString("category",
			mcp.Description(categoryDescription("Only list components in this category (case-insensitive)."))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createListComponentsHandler(provider))
}

func createListComponentsHandler(provider SnapshotProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListComponentsRequest
		if res, err := bindArguments(request, &args); res != nil || err != nil {
			return res, err
		}

		snap, err := provider.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load components: %w", err)
		}

		components := snap.ListCategory(args.Category)
		return marshalToolResponse(&ListComponentsResponse{
			Components:   components,
			Total:        len(components),
			Categories:   snap.Categories(),
			GenerationID: snap.GenerationID(),
		})
	}
}

// AddGetComponentTool registers the get_component tool.
func AddGetComponentTool(s *server.MCPServer, provider SnapshotProvider) {
	tool := mcp.NewTool(
		"get_component",
		mcp.WithDescription("Get the full metadata of one component by name (case-insensitive): category, description, sub-components and props with types, required flags and defaults."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Component name, e.g. 'Button' or 'button'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createGetComponentHandler(provider))
}

func createGetComponentHandler(provider SnapshotProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetComponentRequest
		if res, err := bindArguments(request, &args); res != nil || err != nil {
			return res, err
		}
		name := strings.TrimSpace(args.Name)
		if name == "" {
			return mcp.NewToolResultError("name cannot be empty"), nil
		}

		snap, err := provider.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load components: %w", err)
		}

		if record, ok := snap.GetByName(name); ok {
			return marshalToolResponse(record)
		}

		suggestions := []string{}
		for _, r := range snap.Search(name, "") {
			if len(suggestions) == maxSuggestions {
				break
			}
			suggestions = append(suggestions, r.Name)
		}
		return marshalToolResponse(&ComponentNotFound{Found: false, Name: name, Suggestions: suggestions})
	}
}

// AddSearchComponentsTool registers the search_components tool.
func AddSearchComponentsTool(s *server.MCPServer, provider SnapshotProvider, queries *query.Service) {
	tool := mcp.NewTool(
		"search_components",
		mcp.WithDescription(`Search components by name or description.

Modes:
- substring (default): case-insensitive substring over name and description. Name matches rank first, then manifest order.
- fulltext: bleve query syntax over name, description, sub_components and props.
  Supports field scoping (props:variant, sub_components:header), AND/OR/NOT, "phrases", wildcards (Tab*) and fuzzy terms (Buton~1).

An empty query with a category lists that category.`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text, e.g. 'button' or 'date'")),
		mcp.WithString("category",
			mcp.Description(categoryDescription("Restrict results to this category (case-insensitive)."))),
		mcp.WithString("mode",
			mcp.Enum(string(query.ModeSubstring), string(query.ModeFullText)),
			mcp.Description("Search mode (default: substring)")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: all for substring, 15 for fulltext, max 100)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchComponentsHandler(provider, queries))
}

func createSearchComponentsHandler(provider SnapshotProvider, queries *query.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SearchComponentsRequest
		if res, err := bindArguments(request, &args); res != nil || err != nil {
			return res, err
		}

		mode, err := query.ParseMode(args.Mode)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Limit < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}

		snap, err := provider.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load components: %w", err)
		}

		results, err := queries.Search(snap, query.SearchRequest{
			Query:    args.Query,
			Category: args.Category,
			Mode:     mode,
			Limit:    args.Limit,
		})
		if err != nil {
			// Query syntax problems in fulltext mode are the caller's to fix.
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return marshalToolResponse(&SearchComponentsResponse{
			Components: results,
			Total:      len(results),
			Mode:       mode,
		})
	}
}

// AddSyncMetadataTool registers the sync_metadata tool.
func AddSyncMetadataTool(s *server.MCPServer, refresher Refresher) {
	tool := mcp.NewTool(
		"sync_metadata",
		mcp.WithDescription("Re-parse the component manifest, persist the result and report new, updated and removed components. Call after editing components; queries never re-read source on their own."),
		mcp.WithBoolean("force",
			mcp.Description("Start a new sync even if one is already running, instead of sharing its result")),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, createSyncMetadataHandler(refresher))
}

func createSyncMetadataHandler(refresher Refresher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SyncMetadataRequest
		if res, err := bindArguments(request, &args); res != nil || err != nil {
			return res, err
		}

		report, err := refresher.Refresh(ctx, args.Force)
		if err != nil {
			return nil, fmt.Errorf("sync failed: %w", err)
		}
		return marshalToolResponse(report)
	}
}
