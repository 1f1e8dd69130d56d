package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/studyplan"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-run the analysis pipeline on a saved session",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.String("session", "", "Path to a saved session JSON (required)")
	f.Bool("save-intermediate", false, "Also write the stage-1 and stage-2 reports")
	_ = reportCmd.MarkFlagRequired("session")
}

func runReport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	path := v.GetString("session")
	sess, err := quiz.Load(path)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	_, err = analyzeSession(cmd.Context(), v, sess)

	var synErr *studyplan.SynthesisError
	if errors.As(err, &synErr) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Study plan generation failed:", err)
		fmt.Fprintf(os.Stderr, "The session at %s is untouched; run this command again to retry.\n", path)
	}
	return err
}
