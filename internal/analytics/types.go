// Package analytics derives the aggregated KPI report from a raw
// performance report: global time/latency distributions, revision
// effects, overthinking and impulsivity indices, and per-concept
// accuracy, work-quality, and confidence scores. It is a pure
// transformation with no external calls.
package analytics

// SchemaVersion identifies the aggregated report layout.
const SchemaVersion = "stage2.v1"

// Stage2Report is the aggregated KPI report for one quiz.
type Stage2Report struct {
	SchemaVersion string             `json:"schema_version"`
	ReportMeta    Meta               `json:"report_meta"`
	KPISummary    KPISummary         `json:"kpis_summary"`
	Concepts      []ConceptAggregate `json:"concepts"`
}

// Meta links the aggregate back to its source report.
type Meta struct {
	ReportID             string `json:"report_id"`
	SourceStage1ReportID string `json:"source_stage1_report_id"`
	GeneratedAtISO       string `json:"generated_at_iso"`
}

// Distribution summarizes a set of per-question values.
type Distribution struct {
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

// RevisionEffect breaks down how answer revisions turned out.
type RevisionEffect struct {
	ImprovedRate float64 `json:"improved_rate"`
	WorsenedRate float64 `json:"worsened_rate"`
	NoChangeRate float64 `json:"no_change_rate"`
}

// OverthinkingIndex is the fraction of easy questions that took longer
// than the threshold.
type OverthinkingIndex struct {
	Value                float64 `json:"value"`
	EasyTimeThresholdSec int     `json:"easy_time_threshold_sec"`
}

// ImpulsivityIndex is the fraction of attempted questions answered
// faster than the threshold.
type ImpulsivityIndex struct {
	Value                 float64 `json:"value"`
	ImpulsiveThresholdSec int     `json:"impulsive_threshold_sec"`
}

// KPISummary holds the quiz-wide behavioral metrics.
type KPISummary struct {
	TimeSpentSec           Distribution      `json:"time_spent_sec"`
	FirstAttemptLatencySec Distribution      `json:"first_attempt_latency_sec"`
	NumOptionChanges       Distribution      `json:"num_option_changes"`
	ChangedAnswerRate      float64           `json:"changed_answer_rate"`
	RevisionEffect         RevisionEffect    `json:"revision_effect"`
	OverthinkingIndex      OverthinkingIndex `json:"overthinking_index"`
	ImpulsivityIndex       ImpulsivityIndex  `json:"impulsivity_index"`
}

// ConceptAggregate summarizes performance on one concept tag. Only
// concepts with at least one attempted question are emitted.
type ConceptAggregate struct {
	ConceptID         string            `json:"concept_id"`
	Attempted         int               `json:"attempted"`
	Correct           int               `json:"correct"`
	Accuracy          float64           `json:"accuracy"`
	KPIs              ConceptKPIs       `json:"kpis"`
	WorkQualityRating WorkQualityRating `json:"work_quality_rating"`
	ConceptConfidence ConceptConfidence `json:"concept_confidence"`
}

// ConceptKPIs holds the per-concept behavioral metrics, computed over
// attempted questions only.
type ConceptKPIs struct {
	AvgTimeSpentSec              float64 `json:"avg_time_spent_sec"`
	MedianTimeSpentSec           float64 `json:"median_time_spent_sec"`
	AvgFirstAttemptLatencySec    float64 `json:"avg_first_attempt_latency_sec"`
	MedianFirstAttemptLatencySec float64 `json:"median_first_attempt_latency_sec"`
	ChangedAnswerRate            float64 `json:"changed_answer_rate"`
	AvgNumOptionChanges          float64 `json:"avg_num_option_changes"`
}

// WorkQualityRating is the rule-based estimate of how well the
// student's submitted work covers a concept.
type WorkQualityRating struct {
	Scale               string   `json:"scale"`
	Value               int      `json:"value"`
	EvidenceCount       int      `json:"evidence_count"`
	EvidenceQuestionIDs []string `json:"evidence_question_ids"`
	Source              string   `json:"source"`
}

// ConceptConfidence is the weighted confidence score for one concept.
type ConceptConfidence struct {
	Value      float64  `json:"value"`
	Method     string   `json:"method"`
	InputsUsed []string `json:"inputs_used"`
}
