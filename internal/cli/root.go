package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	projectDir string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - component metadata for AI coding assistants",
	Long: `Atlas discovers the UI components a design system exports, records their
categories, descriptions, sub-components and props, and serves that metadata
to coding assistants over the Model Context Protocol.

Metadata lives in .atlas/components.json and is refreshed only by an explicit
sync ("atlas sync" or the sync_metadata tool), or once on the first query when
no store exists yet.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <project>/.atlas/config.yml)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
