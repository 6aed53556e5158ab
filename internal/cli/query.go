package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/query"
)

var (
	listCategory   string
	searchCategory string
	searchFullText bool
	searchLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List components as JSON",
	Long: `List every component in manifest order. The first query in a project with
no metadata store runs a sync.

Examples:
  atlas list
  atlas list --category forms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return listComponents(cmd.Context(), cmd.OutOrStdout(), a, listCategory)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one component's metadata as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return getComponent(cmd.Context(), cmd.OutOrStdout(), a, args[0])
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search components by name or description",
	Long: `Search components. By default the query is a case-insensitive substring of
the name or description, with name matches first. With --fulltext the query
uses bleve syntax over name, description, sub-components and props.

Examples:
  atlas search button
  atlas search date --category forms
  atlas search 'props:variant' --fulltext`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := query.ModeSubstring
		if searchFullText {
			mode = query.ModeFullText
		}
		return withApp(func(a *app) error {
			return searchComponents(cmd.Context(), cmd.OutOrStdout(), a, query.SearchRequest{
				Query:    args[0],
				Category: searchCategory,
				Mode:     mode,
				Limit:    searchLimit,
			})
		})
	},
}

func init() {
	categories := strings.Join(component.Categories(), ", ")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list this category ("+categories+")")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict results to this category")
	searchCmd.Flags().BoolVar(&searchFullText, "fulltext", false, "use full-text query syntax")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")

	rootCmd.AddCommand(listCmd, getCmd, searchCmd)
}

func withApp(fn func(a *app) error) error {
	a, err := newApp(currentAppOptions())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func listComponents(ctx context.Context, out io.Writer, a *app, category string) error {
	snap, err := a.boot.Snapshot(contextOrBackground(ctx))
	if err != nil {
		return err
	}
	return printJSON(out, snap.ListCategory(category))
}

func getComponent(ctx context.Context, out io.Writer, a *app, name string) error {
	snap, err := a.boot.Snapshot(contextOrBackground(ctx))
	if err != nil {
		return err
	}
	record, ok := snap.GetByName(name)
	if !ok {
		var suggestions []string
		for _, r := range snap.Search(name, "") {
			suggestions = append(suggestions, r.Name)
		}
		if len(suggestions) > 0 {
			return fmt.Errorf("component %q not found (did you mean: %s?)", name, joinTruncated(suggestions, 5))
		}
		return fmt.Errorf("component %q not found", name)
	}
	return printJSON(out, record)
}

func searchComponents(ctx context.Context, out io.Writer, a *app, req query.SearchRequest) error {
	snap, err := a.boot.Snapshot(contextOrBackground(ctx))
	if err != nil {
		return err
	}
	results, err := a.queries.Search(snap, req)
	if err != nil {
		return err
	}
	return printJSON(out, results)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
