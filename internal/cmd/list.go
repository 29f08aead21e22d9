package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpriess/planforge/internal/document"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Long: `List all stored documents of one kind with their current version.

Examples:
  planforge list
  planforge list --kind command`,
	RunE: runList,
}

var listKind string

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "plan", "Document kind: plan or command")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	kind := document.Kind(listKind)
	if kind != document.KindPlan && kind != document.KindCommand {
		return fmt.Errorf("invalid kind %q (must be plan or command)", listKind)
	}

	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, paths)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.ListDocuments(cmd.Context(), kind)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Printf("%sNo %ss stored%s\n", colorDim, kind, colorReset)
		return nil
	}

	for _, doc := range docs {
		detail := string(doc.Status)
		if kind == document.KindCommand {
			detail = doc.Category
		}
		fmt.Printf("  %s%-50s%s v%-3d %s%s%s", colorCyan, doc.Name, colorReset, doc.Version, colorDim, detail, colorReset)
		if doc.Description != "" {
			fmt.Printf("  %s", doc.Description)
		}
		fmt.Println()
	}
	fmt.Printf("\n%d %s(s)\n", len(docs), kind)
	return nil
}
