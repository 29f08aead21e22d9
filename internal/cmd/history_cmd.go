package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Show the version history of a document",
	Long: `Show every archived version of a document, oldest first, with the
change summary recorded at each write.

Examples:
  planforge history myapp_approved_add_feature.md`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, paths)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	doc, err := store.GetDocumentByName(ctx, args[0])
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("no document named %q", args[0])
	}

	entries, err := store.GetHistory(ctx, doc.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s (current v%d)\n\n", colorBold, doc.Name, colorReset, doc.Version)
	for _, entry := range entries {
		fmt.Printf("  v%-3d %s%s%s  %s\n", entry.Version, colorDim, entry.ArchivedAt, colorReset, entry.ChangeSummary)
	}
	return nil
}
