package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a document, archiving its final version",
	Long: `Delete a document from the store. The final state is archived in the
version history before the live row is removed, so deleted content remains
inspectable via its archived versions.

Examples:
  planforge rm myapp_draft_old_idea.md`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
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

	res := store.DeleteDocument(ctx, doc.ID)
	if !res.Success {
		return fmt.Errorf("failed to delete %s: %s", args[0], res.Message)
	}

	fmt.Printf("%sDeleted%s %s (final version v%d archived)\n", colorGreen, colorReset, doc.Name, doc.Version)
	return nil
}
