package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/mathdrill/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "mathdrill",
	Short: "JEE math quizzes with AI performance analysis",
	Long: `Mathdrill runs JEE mathematics quizzes from local question banks,
then turns the attempt into a prioritized study plan: answers are
checked for mathematical equivalence, handwritten work is
transcribed, behavioral KPIs are aggregated, and an LLM specifies
the remediation videos to produce.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Mirrors the original tool's dotenv autoload; a missing .env is
	// fine.
	_ = godotenv.Load()

	pf := rootCmd.PersistentFlags()
	pf.String("olympiad-db", "olympiad.db", "Path to the olympiad question database")
	pf.String("calculus-db", "calculus.db", "Path to the calculus question database")
	pf.String("reports-dir", pipeline.DefaultReportsDir, "Directory for report artifacts")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)

	// Make "quiz" the default when no subcommand is given, and
	// register its flags on root so bare `mathdrill -t Algebra` works.
	rootCmd.RunE = quizCmd.RunE
	rootCmd.Flags().AddFlagSet(quizCmd.Flags())
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MATHDRILL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mathdrill")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/mathdrill")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}

	return v
}
