package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimhub/claimctl/internal/llm"
	"github.com/claimhub/claimctl/internal/normalize"
)

var (
	explainProvider string
	explainModel    string
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Explain a claim in plain language",
	Long: `Explain fetches a claim, normalizes it, and asks a language model
to describe it in plain language. The model only sees the normalized
record fields and is instructed not to invent detail.

Requires an LLM provider, e.g.:
  export OPENAI_API_KEY=sk-...
  claimctl explain 42 --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainProvider, "llm-provider", "", "LLM provider (overrides config)")
	explainCmd.Flags().StringVar(&explainModel, "llm-model", "", "LLM model name (overrides config)")

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	if err := app.requireSession(cmd.Context()); err != nil {
		return err
	}

	llmCfg := app.cfg.LLM
	if explainProvider != "" {
		llmCfg.Provider = explainProvider
	}
	if explainModel != "" {
		llmCfg.Model = explainModel
	}
	if llmCfg.Provider == "openai" && llmCfg.APIKey == "" {
		llmCfg.APIKey = os.Getenv("OPENAI_API_KEY")
		if llmCfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("no LLM provider configured (set llm.provider or pass --llm-provider)")
	}

	record, err := app.claims.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	claim := normalize.Claim(record)

	resp, err := provider.Explain(cmd.Context(), llm.ExplainRequest{
		Claim: claim,
		Model: llmCfg.Model,
	})
	if err != nil {
		return fmt.Errorf("explain claim: %w", err)
	}

	fmt.Println(resp.Summary)
	if verbose {
		fmt.Fprintf(os.Stderr, "\n[%s, %d tokens]\n", resp.Model, resp.TokensUsed)
	}
	return nil
}
