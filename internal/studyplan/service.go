package studyplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/mathdrill/internal/analytics"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/report"
)

// Config holds configuration for the plan synthesizer.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns sensible defaults. Plans are large documents,
// so the token ceiling is generous.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8192,
		Temperature: 0.4,
		Timeout:     180 * time.Second,
	}
}

// SynthesisError reports a failed plan synthesis. Earlier pipeline
// stages remain valid; callers should surface the reason and offer a
// retry rather than fabricate a plan.
type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan synthesis: %s: %v", e.Reason, e.Err)
	}
	return "plan synthesis: " + e.Reason
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Synthesizer turns a scored quiz into a prioritized study plan with
// video lesson specifications.
type Synthesizer struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// New creates a plan synthesizer.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{provider: provider, cfg: cfg, logger: logger}
}

// Synthesize generates the study plan from the aggregated analysis,
// quoting student work from the per-question report where available.
// There is no degraded mode: without a provider, or on any schema
// violation, it returns a *SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, stage2 *analytics.Stage2Report, stage1 *report.Stage1Report) (*Plan, error) {
	if s.provider == nil {
		return nil, &SynthesisError{Reason: "no reasoning provider configured"}
	}

	stage2JSON, err := json.MarshalIndent(stage2, "", "  ")
	if err != nil {
		return nil, &SynthesisError{Reason: "encode analysis report", Err: err}
	}

	reportID := stage2.ReportMeta.SourceStage1ReportID + "_stage3"
	userMsg := buildSynthesisMessage(stage2JSON, buildWorkContext(stage1),
		reportID, stage2.ReportMeta.ReportID, time.Now().UTC().Format(time.RFC3339))

	ctx = llm.WithPurpose(ctx, "plan-synthesis")
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: synthesisSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      PlanSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, &SynthesisError{Reason: "generation failed", Err: err}
	}

	plan, err := parsePlan(resp.Content)
	if err != nil {
		return nil, &SynthesisError{Reason: "invalid plan", Err: err}
	}

	s.logger.Debug("study plan synthesized",
		"report_id", plan.ReportMeta.ReportID,
		"priority_concepts", len(plan.PriorityConcepts),
		"video_requests", len(plan.VideoRequests))
	return plan, nil
}

// parsePlan decodes a plan document strictly: markdown fences are
// tolerated, unknown fields are not.
func parsePlan(raw json.RawMessage) (*Plan, error) {
	cleaned := stripFences(string(raw))

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after plan document")
	}
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func validatePlan(p *Plan) error {
	if p.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unexpected schema_version %q", p.SchemaVersion)
	}
	if len(p.PriorityConcepts) == 0 {
		return errors.New("plan names no priority concepts")
	}
	known := make(map[string]bool, len(p.PriorityConcepts))
	for _, c := range p.PriorityConcepts {
		known[c.ConceptID] = true
	}
	for _, v := range p.VideoRequests {
		if !known[v.ConceptID] {
			return fmt.Errorf("video %s references concept %q outside the priority list", v.VideoID, v.ConceptID)
		}
		if strings.TrimSpace(v.AddressesStudentError) == "" {
			return fmt.Errorf("video %s does not state the student error it addresses", v.VideoID)
		}
	}
	return nil
}

// stripFences removes markdown code fences some models wrap around
// JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	} else if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}
