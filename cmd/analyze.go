package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/abhisek/mathdrill/internal/judge"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/pipeline"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/report"
	"github.com/abhisek/mathdrill/internal/studyplan"
	"github.com/abhisek/mathdrill/internal/transcribe"
)

// analyzeSession runs the three-stage pipeline over a finished session
// and prints whatever completed. Callers inspect the error to decide
// how to recover; the outcome is valid alongside it.
func analyzeSession(ctx context.Context, v *viper.Viper, sess *quiz.Session) (*pipeline.Outcome, error) {
	logger := slog.Default()

	provider, err := llm.NewProviderFromEnv(ctx, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Answers fall back to exact comparison and no study plan can be generated.")
	}

	builder := report.NewBuilder(
		judge.New(provider, judge.DefaultConfig(), logger),
		transcribe.New(provider, transcribe.DefaultConfig(), logger),
		logger,
	)
	builder.OnProgress = func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rAnalyzing answers %d/%d", done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	synthesizer := studyplan.New(provider, studyplan.DefaultConfig(), logger)
	runner := pipeline.New(builder, synthesizer, logger)

	out, err := runner.Run(ctx, sess, pipeline.Options{
		ReportsDir:       v.GetString("reports-dir"),
		SaveIntermediate: v.GetBool("save-intermediate"),
	})
	printOutcome(os.Stdout, out)
	return out, err
}

func printOutcome(w io.Writer, out *pipeline.Outcome) {
	if out.Stage1 != nil {
		s := out.Stage1.ScoreSummary
		fmt.Fprintf(w, "\nScore: %d/%d (%d correct, %d incorrect, %d unattempted)\n",
			s.RawScore, s.MaxScore, s.CorrectCount, s.IncorrectCount, s.UnattemptedCount)
	}

	if out.Stage2 != nil && len(out.Stage2.Concepts) > 0 {
		fmt.Fprintln(w, "\nConcepts:")
		for _, c := range out.Stage2.Concepts {
			fmt.Fprintf(w, "  %-28s %d/%d correct   confidence %.2f   work quality %d/10\n",
				c.ConceptID, c.Correct, c.Attempted,
				c.ConceptConfidence.Value, c.WorkQualityRating.Value)
		}
	}

	if out.Plan != nil {
		fmt.Fprintln(w, "\nPriority concepts:")
		for _, pc := range out.Plan.PriorityConcepts {
			fmt.Fprintf(w, "  [%s] %s", pc.Priority, pc.ConceptID)
			if len(pc.ImproveAspects) > 0 {
				fmt.Fprintf(w, ": %s", pc.ImproveAspects[0].GoalStatement)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "\nVideo requests: %d\n", len(out.Plan.VideoRequests))
		fmt.Fprintf(w, "Study plan saved to %s\n", out.ArtifactPath)
	}
}
