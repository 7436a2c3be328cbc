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
	fetchJSON bool
	fetchTOON bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <id> [id...]",
	Short: "Fetch documents from the index by id",
	Long: `Fetch full documents from the vector store by id.

Content is truncated to the configured budget; the metadata of each
object reports whether truncation happened.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVarP(&fetchJSON, "json", "j", false, "Output objects in JSON format (for AI agents)")
	fetchCmd.Flags().BoolVarP(&fetchTOON, "toon", "t", false, "Output objects in TOON format (token-efficient for AI agents)")
	fetchCmd.MarkFlagsMutuallyExclusive("json", "toon")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	objectIDs := make([]any, len(args))
	for i, id := range args {
		objectIDs[i] = id
	}
	page := svc.Fetch(ctx, objectIDs)

	if fetchJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(page.Objects)
	}
	if fetchTOON {
		output, err := gotoon.Encode(page.Objects)
		if err != nil {
			return fmt.Errorf("failed to encode TOON: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(page.Objects) == 0 {
		fmt.Println("No objects found.")
		return nil
	}

	for _, obj := range page.Objects {
		fmt.Printf("─── %s ───\n", obj.ID)
		if truncated, ok := obj.Metadata["truncated"].(bool); ok && truncated {
			fmt.Println("(content truncated)")
		}
		fmt.Println(obj.Content)
		fmt.Println()
	}

	return nil
}
