package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Show the discovered LLM provider and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)

		provider, err := llm.NewProviderFromEnv(cmd.Context(), slog.Default())
		if err != nil {
			fmt.Println("No LLM provider configured.")
			fmt.Println()
			fmt.Println(err)
			fmt.Println()
			fmt.Println("Set one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or")
			fmt.Println("OPENROUTER_API_KEY, or select explicitly with MATHDRILL_LLM_PROVIDER")
			fmt.Println("and the matching MATHDRILL_*_API_KEY variable.")
			fmt.Println()
			fmt.Println("Without a provider, answer checking degrades to exact comparison,")
			fmt.Println("handwritten work is not transcribed, and no study plan is generated.")
			return nil
		}

		model := provider.ModelID()
		fmt.Println("Provider configured.")
		fmt.Println("Model:", model)
		if cost := llm.LookupCost(model); cost != nil {
			fmt.Printf("Pricing: $%.2f/M input tokens, $%.2f/M output tokens\n",
				cost.InputPerMTok, cost.OutputPerMTok)
		} else {
			fmt.Println("Pricing: unknown model, cost estimates unavailable")
		}
		return nil
	},
}
