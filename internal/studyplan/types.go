// Package studyplan synthesizes a prioritized remediation plan from
// the aggregated KPI report and the student's own written work, via a
// schema-constrained LLM call. Synthesis failure is fatal for the
// quiz-finish flow; nothing is persisted without a valid plan.
package studyplan

// SchemaVersion identifies the remediation plan layout.
const SchemaVersion = "stage3.v1"

// Plan is the final remediation plan and the system's only persisted
// artifact.
type Plan struct {
	SchemaVersion    string            `json:"schema_version"`
	ReportMeta       Meta              `json:"report_meta"`
	PriorityConcepts []PriorityConcept `json:"priority_concepts"`
	VideoRequests    []VideoRequest    `json:"video_requests"`
}

// Meta links the plan back to its source aggregate.
type Meta struct {
	ReportID             string `json:"report_id"`
	SourceStage2ReportID string `json:"source_stage2_report_id"`
	GeneratedAtISO       string `json:"generated_at_iso"`
	Producer             string `json:"producer"`
}

// PriorityConcept is one concept the student should work on, with the
// evidence behind the call and a recommended path.
type PriorityConcept struct {
	ConceptID           string           `json:"concept_id"`
	Priority            string           `json:"priority"`
	WhyThisConcept      ConceptRationale `json:"why_this_concept"`
	ImproveAspects      []ImproveAspect  `json:"improve_aspects"`
	RecommendedSequence []SequenceStep   `json:"recommended_sequence"`
}

// ConceptRationale ties a priority call to measured signals and errors
// observed in the student's work.
type ConceptRationale struct {
	Signals        Signals  `json:"signals"`
	ObservedErrors []string `json:"observed_errors"`
}

// Signals echoes the KPI evidence for one concept.
type Signals struct {
	Accuracy          float64 `json:"accuracy"`
	ConceptConfidence float64 `json:"concept_confidence"`
	WorkQualityRating int     `json:"work_quality_rating"`
}

// ImproveAspect names one dimension to improve and its goal.
type ImproveAspect struct {
	AspectTag     string `json:"aspect_tag"`
	GoalStatement string `json:"goal_statement"`
}

// SequenceStep is one step of the recommended learning sequence.
type SequenceStep struct {
	StepType         string `json:"step_type"`
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// VideoRequest specifies one explainer video targeting errors found in
// the student's work.
type VideoRequest struct {
	VideoID               string             `json:"video_id"`
	ConceptID             string             `json:"concept_id"`
	VideoType             string             `json:"video_type"`
	DurationSecTarget     int                `json:"duration_sec_target"`
	VisualStrategy        string             `json:"visual_strategy"`
	AddressesStudentError string             `json:"addresses_student_error"`
	ScriptRequirements    ScriptRequirements `json:"precise_script_requirements"`
	Assets                Assets             `json:"assets"`
}

// ScriptRequirements pins down what the video script must cover.
type ScriptRequirements struct {
	MustInclude          []string        `json:"must_include"`
	Examples             []WorkedExample `json:"examples"`
	CommonTrapsToAddress []string        `json:"common_traps_to_address"`
}

// WorkedExample is one before/after transformation referencing the
// student's mistake.
type WorkedExample struct {
	Original       string `json:"original"`
	Transform      string `json:"transform"`
	StudentMistake string `json:"student_mistake"`
}

// Assets selects the rendering template and its parameters.
type Assets struct {
	TemplateID      string          `json:"template_id"`
	ManimParameters ManimParameters `json:"manim_parameters"`
}

// ManimParameters tunes the animation rendering.
type ManimParameters struct {
	ShowAnimation    bool   `json:"show_animation"`
	HighlightKeyStep bool   `json:"highlight_key_step"`
	Pace             string `json:"pace"`
}
