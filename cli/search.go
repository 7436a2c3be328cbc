package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/avelinec/docdex/config"
)

var (
	searchLimit int
	searchJSON  bool
	searchTOON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the document index with natural language",
	Long: `Search the document index using a natural language query.

The query is vectorized with the configured embedding provider and
matched against the vector store. Results carry the id, score, title,
snippet, and source of each hit.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Number of results to return (1-25, default from config)")
	searchCmd.Flags().BoolVarP(&searchJSON, "json", "j", false, "Output results in JSON format (for AI agents)")
	searchCmd.Flags().BoolVarP(&searchTOON, "toon", "t", false, "Output results in TOON format (token-efficient for AI agents)")
	searchCmd.MarkFlagsMutuallyExclusive("json", "toon")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var topK *int
	if searchLimit > 0 {
		topK = &searchLimit
	}
	page := svc.Search(ctx, query, topK)

	if searchJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(page.Results)
	}
	if searchTOON {
		output, err := gotoon.Encode(page.Results)
		if err != nil {
			return fmt.Errorf("failed to encode TOON: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(page.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %q\n\n", len(page.Results), query)
	for i, result := range page.Results {
		fmt.Printf("─── Result %d (score: %.4f) ───\n", i+1, result.Score)
		fmt.Printf("ID: %s\n", result.ID)
		if result.Title != "" {
			fmt.Printf("Title: %s\n", result.Title)
		}
		if result.Source != "" {
			fmt.Printf("Source: %s\n", result.Source)
		}
		if result.Snippet != "" {
			fmt.Println()
			fmt.Println(result.Snippet)
		}
		fmt.Println()
	}

	return nil
}
