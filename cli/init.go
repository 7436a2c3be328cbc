package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelinec/docdex/config"
)

var (
	initProvider string
	initModel    string
	initBackend  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default docdex config file",
	Long: `Initialize docdex by writing a default docdex.yaml in the current
directory.

Credentials (PINECONE_API_KEY, OPENAI_API_KEY, SECRET_TOKEN, ...) are
read from the environment or a .env file, so they never need to live
in the config file itself.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initProvider, "provider", "p", "", "Embedding provider (openai or ollama)")
	initCmd.Flags().StringVarP(&initModel, "model", "m", "", "Embedding model")
	initCmd.Flags().StringVarP(&initBackend, "backend", "b", "", "Storage backend (pinecone, qdrant, or postgres)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.ConfigFileName
	}

	if config.Exists(path) {
		fmt.Println("docdex is already initialized in this directory.")
		fmt.Printf("Configuration: %s\n", path)
		return nil
	}

	cfg := config.DefaultConfig()
	if initProvider != "" {
		cfg.Embedder.Provider = initProvider
	}
	if initBackend != "" {
		cfg.Store.Backend = initBackend
	}

	switch cfg.Embedder.Provider {
	case "openai":
	case "ollama":
		dim := 768
		cfg.Embedder.Model = "nomic-embed-text"
		cfg.Embedder.Endpoint = "http://localhost:11434"
		cfg.Embedder.Dimensions = &dim
	default:
		return fmt.Errorf("unknown embedding provider: %s", cfg.Embedder.Provider)
	}
	if initModel != "" {
		cfg.Embedder.Model = initModel
	}
	switch cfg.Store.Backend {
	case "pinecone", "qdrant", "postgres":
	default:
		return fmt.Errorf("unknown storage backend: %s", cfg.Store.Backend)
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Created %s (backend=%s provider=%s)\n", path, cfg.Store.Backend, cfg.Embedder.Provider)
	fmt.Println("Next steps:")
	fmt.Println("  1. Export your store and embedder credentials (or put them in .env)")
	fmt.Println("  2. Run 'docdex serve' to start the MCP server")
	return nil
}
