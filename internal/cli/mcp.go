package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/component-atlas/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for component metadata",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
discover the design system's components.

The MCP server:
- Loads .atlas/components.json on the first query, syncing once if it is missing
- Provides list_components, get_component, search_components and sync_metadata
- Never re-reads component source unless sync_metadata is called
- Communicates via stdio (standard MCP transport); logs go to stderr

Example:
  atlas mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(currentAppOptions())
	if err != nil {
		return err
	}

	server := mcp.NewServer(mcp.ServerConfig{
		Name:    a.cfg.Server.Name,
		Version: Version,
	}, a.boot, a.queries, a.logger)
	defer server.Close()

	a.logger.Info("Atlas MCP server", "project", a.root, "store", a.store.Path())

	err = server.Serve(ctx)
	logSyncMetrics(a)
	if err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
