// Package report assembles the raw per-question performance report
// from a finished quiz session: correctness verdicts, timing KPIs, and
// work evidence, plus a score summary.
package report

import (
	"github.com/abhisek/mathdrill/internal/question"
)

// SchemaVersion identifies the raw report layout.
const SchemaVersion = "stage1.v1"

// Fixed assessment framing stamped into every report.
const (
	ExamTarget   = "JEE"
	Subject      = "Math"
	TimeLimitSec = 3600
)

// RevisionOutcome classifies the effect of answer revisions on one
// question.
type RevisionOutcome string

const (
	RevisionNone     RevisionOutcome = "none"
	RevisionImproved RevisionOutcome = "improved"
	RevisionWorsened RevisionOutcome = "worsened"
)

// Stage1Report is the raw performance report for one quiz.
type Stage1Report struct {
	SchemaVersion string           `json:"schema_version"`
	ReportMeta    Meta             `json:"report_meta"`
	ScoreSummary  ScoreSummary     `json:"score_summary"`
	Questions     []QuestionRecord `json:"questions"`
}

// Meta identifies a report and the assessment it covers.
type Meta struct {
	ReportID       string `json:"report_id"`
	GeneratedAtISO string `json:"generated_at_iso"`
	ExamTarget     string `json:"exam_target"`
	Subject        string `json:"subject"`
	AssessmentID   string `json:"assessment_id"`
	NumQuestions   int    `json:"num_questions"`
	TimeLimitSec   int    `json:"time_limit_sec"`
}

// ScoreSummary counts outcomes across the whole quiz.
type ScoreSummary struct {
	RawScore         int `json:"raw_score"`
	MaxScore         int `json:"max_score"`
	CorrectCount     int `json:"correct_count"`
	IncorrectCount   int `json:"incorrect_count"`
	UnattemptedCount int `json:"unattempted_count"`
}

// QuestionRecord is the per-question slice of the report.
type QuestionRecord struct {
	QuestionID   string              `json:"question_id"`
	QuestionType string              `json:"question_type"`
	Difficulty   question.Difficulty `json:"difficulty"`
	ConceptTags  []string            `json:"concept_tags"`
	Submission   Submission          `json:"submission"`
	KPIs         KPISet              `json:"kpis"`
	OptionalWork OptionalWork        `json:"optional_work"`
}

// Submission records the student's final answer and its verdict.
type Submission struct {
	FinalAnswer   string `json:"final_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	ChangedAnswer bool   `json:"changed_answer"`
}

// KPISet holds the behavioral measurements for one question.
type KPISet struct {
	TimeSpentSec           int             `json:"time_spent_sec"`
	FirstAttemptLatencySec int             `json:"first_attempt_latency_sec"`
	NumOptionChanges       int             `json:"num_option_changes"`
	RevisionOutcome        RevisionOutcome `json:"revision_outcome"`
}

// OptionalWork carries the student's reasoning evidence, when any was
// submitted.
type OptionalWork struct {
	HandwrittenUploaded bool   `json:"handwritten_uploaded"`
	TypedWorkProvided   bool   `json:"typed_work_provided"`
	TypedWorkText       string `json:"typed_work_text"`
	HandwrittenWorkOCR  string `json:"handwritten_work_ocr"`
	CombinedWorkText    string `json:"combined_work_text"`
}
