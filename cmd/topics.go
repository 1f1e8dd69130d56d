package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/bank"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List quiz topics and question availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)
		v := viperForCmd(cmd)

		store, err := bank.Open(v.GetString("olympiad-db"), v.GetString("calculus-db"))
		if err != nil {
			return fmt.Errorf("open question banks: %w", err)
		}
		defer store.Close()

		counts, err := store.TopicCounts(cmd.Context())
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}

		for _, topic := range bank.Topics() {
			fmt.Printf("%-16s %6d questions\n", topic, counts[topic])
		}
		return nil
	},
}
