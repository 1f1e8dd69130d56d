// Package pipeline chains the three analysis stages that run when a
// quiz finishes: building the per-question performance report, the
// pure KPI aggregation, and study plan synthesis. Only the plan is
// persisted; a synthesis failure leaves nothing on disk.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/mathdrill/internal/analytics"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/report"
	"github.com/abhisek/mathdrill/internal/studyplan"
)

// DefaultReportsDir is where plan artifacts land unless overridden.
const DefaultReportsDir = "quiz_reports"

// Stage1Builder produces the per-question performance report.
type Stage1Builder interface {
	Build(ctx context.Context, sess *quiz.Session) (*report.Stage1Report, error)
}

// PlanSynthesizer produces the study plan from the aggregated report.
type PlanSynthesizer interface {
	Synthesize(ctx context.Context, stage2 *analytics.Stage2Report, stage1 *report.Stage1Report) (*studyplan.Plan, error)
}

// Options control one pipeline run.
type Options struct {
	// ReportsDir receives the plan artifact. Empty means
	// DefaultReportsDir.
	ReportsDir string
	// SaveIntermediate also writes the stage-1 and stage-2 documents,
	// for debugging. Failures there are logged, not fatal.
	SaveIntermediate bool
}

// Outcome carries whatever the run produced. On error the fields
// filled so far remain valid, so callers can show partial results and
// offer a retry.
type Outcome struct {
	Stage1       *report.Stage1Report
	Stage2       *analytics.Stage2Report
	Plan         *studyplan.Plan
	ArtifactPath string
}

// Runner executes the analysis pipeline.
type Runner struct {
	stage1  Stage1Builder
	planner PlanSynthesizer
	logger  *slog.Logger
}

// New creates a pipeline runner.
func New(stage1 Stage1Builder, planner PlanSynthesizer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{stage1: stage1, planner: planner, logger: logger}
}

// Run executes the stages in order. The returned error preserves its
// type, so callers can detect *studyplan.SynthesisError with
// errors.As.
func (r *Runner) Run(ctx context.Context, sess *quiz.Session, opts Options) (*Outcome, error) {
	if opts.ReportsDir == "" {
		opts.ReportsDir = DefaultReportsDir
	}
	out := &Outcome{}

	s1, err := r.stage1.Build(ctx, sess)
	if err != nil {
		return out, fmt.Errorf("build performance report: %w", err)
	}
	out.Stage1 = s1
	r.logger.Info("performance report built",
		"report_id", s1.ReportMeta.ReportID,
		"questions", len(s1.Questions),
		"raw_score", s1.ScoreSummary.RawScore)

	s2 := analytics.Aggregate(s1, time.Now().UTC())
	out.Stage2 = s2
	r.logger.Info("analysis aggregated",
		"report_id", s2.ReportMeta.ReportID,
		"concepts", len(s2.Concepts))

	if opts.SaveIntermediate {
		r.saveIntermediate(opts.ReportsDir, s1, s2)
	}

	plan, err := r.planner.Synthesize(ctx, s2, s1)
	if err != nil {
		return out, err
	}
	out.Plan = plan

	path, err := report.WriteArtifact(opts.ReportsDir, plan.ReportMeta.ReportID, plan)
	if err != nil {
		return out, fmt.Errorf("persist plan: %w", err)
	}
	out.ArtifactPath = path
	r.logger.Info("study plan saved", "path", path)
	return out, nil
}

func (r *Runner) saveIntermediate(dir string, s1 *report.Stage1Report, s2 *analytics.Stage2Report) {
	if _, err := report.WriteArtifact(dir, s1.ReportMeta.ReportID, s1); err != nil {
		r.logger.Warn("failed to save stage-1 report", "error", err)
	}
	if _, err := report.WriteArtifact(dir, s2.ReportMeta.ReportID, s2); err != nil {
		r.logger.Warn("failed to save stage-2 report", "error", err)
	}
}
