package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/bank"
	"github.com/abhisek/mathdrill/internal/collect"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/studyplan"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run a quiz and generate a study plan",
	RunE:  runQuiz,
}

func init() {
	f := quizCmd.Flags()
	f.StringP("topic", "t", "Algebra", "Quiz topic (see `mathdrill topics`)")
	f.IntP("num-questions", "n", 10, "Number of questions")
	f.String("answers-file", "", "Read answers from a script instead of the terminal")
	f.String("save-session", "", "Write the session JSON to this path")
	f.Bool("save-intermediate", false, "Also write the stage-1 and stage-2 reports")
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	logger := slog.Default()

	store, err := bank.Open(v.GetString("olympiad-db"), v.GetString("calculus-db"))
	if err != nil {
		return fmt.Errorf("open question banks: %w", err)
	}
	defer store.Close()

	topic := v.GetString("topic")
	questions, err := store.Fetch(ctx, topic, v.GetInt("num-questions"))
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions available for topic %q (try `mathdrill topics`)", topic)
	}

	sess := quiz.NewSession(topic, questions)

	in := io.Reader(os.Stdin)
	if path := v.GetString("answers-file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open answers file: %w", err)
		}
		defer f.Close()
		in = f
	}

	if err := collect.New(in, os.Stdout, logger).Run(sess); err != nil {
		return fmt.Errorf("collect answers: %w", err)
	}

	sessionPath := v.GetString("save-session")
	if sessionPath != "" {
		if err := sess.Save(sessionPath); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		logger.Info("session saved", "path", sessionPath)
	}

	_, err = analyzeSession(ctx, v, sess)

	// A failed synthesis must not cost the student their answers:
	// persist the session and point at the retry path.
	var synErr *studyplan.SynthesisError
	if errors.As(err, &synErr) {
		if sessionPath == "" {
			sessionPath = "session_" + sess.ID + ".json"
			if saveErr := sess.Save(sessionPath); saveErr != nil {
				logger.Error("failed to save session for retry", "error", saveErr)
				sessionPath = ""
			}
		}
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Study plan generation failed:", err)
		if sessionPath != "" {
			fmt.Fprintf(os.Stderr, "Your answers are saved. Retry with:\n  mathdrill report --session %s\n", sessionPath)
		}
	}
	return err
}
