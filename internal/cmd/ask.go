package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpriess/planforge/internal/provider"
	"github.com/mpriess/planforge/internal/storage"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the configured AI provider about a plan",
	Long: `Ask the configured AI provider a question, optionally with a stored
document's content as context. Responses are cached; identical questions
are answered from the cache until the entry expires.

Examples:
  planforge ask "split this into smaller steps" --doc myapp_draft_big_idea.md
  planforge ask "what should I plan first for a CLI tool?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askDoc     string
	askNoCache bool
)

func init() {
	askCmd.Flags().StringVar(&askDoc, "doc", "", "Stored document to include as context")
	askCmd.Flags().BoolVar(&askNoCache, "no-cache", false, "Bypass the response cache")
	rootCmd.AddCommand(askCmd)
}

const askSystemPrompt = "You are a planning assistant. Answer concisely and " +
	"concretely; when asked to change a plan, return the full revised plan."

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.AI.Enabled {
		return fmt.Errorf("AI features are disabled; enable with: planforge config ai.enabled true")
	}

	store, err := openStore(cfg, paths)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	question := strings.Join(args, " ")
	prompt := question
	if askDoc != "" {
		doc, err := store.GetDocumentByName(ctx, askDoc)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("no document named %q", askDoc)
		}
		prompt = fmt.Sprintf("Document %s:\n\n%s\n\nQuestion: %s", doc.Name, doc.Content, question)
	}

	registry := provider.NewRegistryWithPreference(cfg.AI.Provider)
	p, err := registry.GetBest()
	if err != nil {
		return err
	}

	req := &provider.Request{Prompt: prompt, System: askSystemPrompt, Model: cfg.AI.Model}
	key := provider.CacheKey(p.Name(), req)

	if !askNoCache {
		if entry, err := store.GetCached(ctx, key); err == nil && entry != nil {
			fmt.Printf("%s(cached, %s)%s\n", colorDim, entry.Provider, colorReset)
			fmt.Println(entry.ResponseText)
			return nil
		}
	}

	resp, err := p.Complete(ctx, req)
	if err != nil {
		if err.Error() == "interrupted" {
			fmt.Printf("\n%sCancelled%s\n", colorDim, colorReset)
			return nil
		}
		return err
	}

	fmt.Println(resp.Text)

	now := time.Now().UnixMilli()
	ttl := time.Duration(cfg.AI.CacheTTLHours) * time.Hour
	if err := store.SetCached(ctx, &storage.CacheEntry{
		CacheKey:        key,
		ResponseText:    resp.Text,
		Provider:        resp.ProviderName,
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + ttl.Milliseconds(),
	}); err != nil {
		// Non-fatal, just warn
		fmt.Fprintf(os.Stderr, "Warning: could not cache response: %v\n", err)
	}

	if _, err := store.PruneExpiredCache(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not prune cache: %v\n", err)
	}
	return nil
}
