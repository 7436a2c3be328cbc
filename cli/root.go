// Package cli implements the docdex command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "docdex",
	Short: "MCP retrieval server over external vector stores",
	Long: `docdex exposes search and fetch tools to MCP clients over JSON-RPC,
backed by an external vector index (Pinecone, Qdrant, or Postgres) and
an embedding provider.

The index is read-only from docdex's point of view: documents are
ingested elsewhere, docdex serves retrieval.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Best effort: a missing .env is the normal case.
		_ = godotenv.Load()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the docdex version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docdex %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: docdex.yaml)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
