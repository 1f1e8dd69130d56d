package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/mathdrill/internal/question"
	"github.com/abhisek/mathdrill/internal/report"
)

type recSpec struct {
	id       string
	diff     question.Difficulty
	tags     []string
	answer   string // empty means unattempted
	correct  bool
	changed  bool
	timeSec  int
	latency  int
	changes  int
	withWork bool
}

func makeRecord(s recSpec) report.QuestionRecord {
	outcome := report.RevisionNone
	if s.changes > 0 {
		if s.correct {
			outcome = report.RevisionImproved
		} else {
			outcome = report.RevisionWorsened
		}
	}
	work := report.OptionalWork{}
	if s.withWork {
		work = report.OptionalWork{
			TypedWorkProvided: true,
			TypedWorkText:     "shown work",
			CombinedWorkText:  "shown work",
		}
	}
	if s.diff == "" {
		s.diff = question.DifficultyMedium
	}
	if len(s.tags) == 0 {
		s.tags = []string{"ALGEBRA"}
	}
	return report.QuestionRecord{
		QuestionID:   s.id,
		QuestionType: question.TypeNumerical,
		Difficulty:   s.diff,
		ConceptTags:  s.tags,
		Submission: report.Submission{
			FinalAnswer:   s.answer,
			CorrectAnswer: "42",
			IsCorrect:     s.correct,
			ChangedAnswer: s.changed,
		},
		KPIs: report.KPISet{
			TimeSpentSec:           s.timeSec,
			FirstAttemptLatencySec: s.latency,
			NumOptionChanges:       s.changes,
			RevisionOutcome:        outcome,
		},
		OptionalWork: work,
	}
}

func stage1With(records ...report.QuestionRecord) *report.Stage1Report {
	return &report.Stage1Report{
		SchemaVersion: report.SchemaVersion,
		ReportMeta: report.Meta{
			ReportID:     "rep_2025_03_09_140507",
			ExamTarget:   report.ExamTarget,
			Subject:      report.Subject,
			NumQuestions: len(records),
		},
		Questions: records,
	}
}

func TestAggregate_GlobalDistributions(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", answer: "42", timeSec: 30, latency: 10, changes: 0}),
		makeRecord(recSpec{id: "q2", answer: "42", timeSec: 0, latency: 0, changes: 1}),
		makeRecord(recSpec{id: "q3", answer: "42", timeSec: 90, latency: 25, changes: 3}),
	)

	s2 := Aggregate(s1, time.Now())
	k := s2.KPISummary

	// Zero time/latency values stay out of the distributions.
	if k.TimeSpentSec.Avg != 60.0 || k.TimeSpentSec.Median != 60.0 {
		t.Errorf("time_spent = %+v, want avg/median 60", k.TimeSpentSec)
	}
	if k.FirstAttemptLatencySec.Avg != 17.5 || k.FirstAttemptLatencySec.Median != 17.5 {
		t.Errorf("latency = %+v, want avg/median 17.5", k.FirstAttemptLatencySec)
	}
	// Option changes count zeros.
	if k.NumOptionChanges.Avg != 1.33 {
		t.Errorf("option changes avg = %v, want 1.33", k.NumOptionChanges.Avg)
	}
	if k.NumOptionChanges.Median != 1.0 {
		t.Errorf("option changes median = %v, want 1", k.NumOptionChanges.Median)
	}
}

func TestAggregate_ChangedAnswerRateAndRevisionEffect(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", answer: "42", correct: true, changed: true, changes: 1}),
		makeRecord(recSpec{id: "q2", answer: "7", changed: true, changes: 2}),
		makeRecord(recSpec{id: "q3", answer: "42", correct: true}),
		makeRecord(recSpec{id: "q4"}),
	)

	k := Aggregate(s1, time.Now()).KPISummary

	if k.ChangedAnswerRate != 0.67 {
		t.Errorf("changed_answer_rate = %v, want 0.67 (2 of 3 attempted)", k.ChangedAnswerRate)
	}
	want := RevisionEffect{ImprovedRate: 0.25, WorsenedRate: 0.25, NoChangeRate: 0.5}
	if k.RevisionEffect != want {
		t.Errorf("revision_effect = %+v, want %+v", k.RevisionEffect, want)
	}
}

func TestAggregate_ImpulsivityOpenInterval(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", answer: "42", latency: 5}),
		makeRecord(recSpec{id: "q2", answer: "42", latency: 19}),
		makeRecord(recSpec{id: "q3", answer: "42", latency: 20}),
		makeRecord(recSpec{id: "q4"}),
	)

	k := Aggregate(s1, time.Now()).KPISummary

	// 5 and 19 are impulsive, 20 is not, over 3 attempted.
	if k.ImpulsivityIndex.Value != 0.67 {
		t.Errorf("impulsivity = %v, want 0.67", k.ImpulsivityIndex.Value)
	}
	if k.ImpulsivityIndex.ImpulsiveThresholdSec != 20 {
		t.Errorf("threshold = %d, want 20", k.ImpulsivityIndex.ImpulsiveThresholdSec)
	}
}

func TestAggregate_OverthinkingCountsAllEasyQuestions(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", diff: question.DifficultyEasy, timeSec: 30}),
		makeRecord(recSpec{id: "q2", diff: question.DifficultyEasy, answer: "42", correct: true, timeSec: 150}),
		makeRecord(recSpec{id: "q3", diff: question.DifficultyEasy}),
		makeRecord(recSpec{id: "q4", diff: question.DifficultyHard, answer: "42", timeSec: 400}),
	)

	k := Aggregate(s1, time.Now()).KPISummary

	// Denominator is every easy question, attempted or not.
	if k.OverthinkingIndex.Value != 0.33 {
		t.Errorf("overthinking = %v, want 0.33 (1 of 3 easy)", k.OverthinkingIndex.Value)
	}
	if k.OverthinkingIndex.EasyTimeThresholdSec != 120 {
		t.Errorf("threshold = %d, want 120", k.OverthinkingIndex.EasyTimeThresholdSec)
	}
}

func TestAggregate_NoEasyQuestions(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", diff: question.DifficultyHard, answer: "42", timeSec: 500}),
	)

	if got := Aggregate(s1, time.Now()).KPISummary.OverthinkingIndex.Value; got != 0 {
		t.Errorf("overthinking = %v, want 0 without easy questions", got)
	}
}

func TestAggregate_ConceptFanOutAcrossTags(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", tags: []string{"CALCULUS", "LIMITS"}, answer: "42", correct: true, timeSec: 60}),
		makeRecord(recSpec{id: "q2", tags: []string{"LIMITS"}, answer: "7", timeSec: 80}),
	)

	concepts := Aggregate(s1, time.Now()).Concepts
	if len(concepts) != 2 {
		t.Fatalf("concepts = %d, want 2", len(concepts))
	}
	// First-seen order.
	if concepts[0].ConceptID != "CALCULUS" || concepts[1].ConceptID != "LIMITS" {
		t.Errorf("order = %s, %s, want CALCULUS, LIMITS", concepts[0].ConceptID, concepts[1].ConceptID)
	}
	if concepts[0].Attempted != 1 || concepts[0].Correct != 1 {
		t.Errorf("CALCULUS = %d/%d, want 1/1", concepts[0].Correct, concepts[0].Attempted)
	}
	if concepts[1].Attempted != 2 || concepts[1].Correct != 1 {
		t.Errorf("LIMITS = %d/%d, want 1/2", concepts[1].Correct, concepts[1].Attempted)
	}
	if concepts[1].Accuracy != 0.5 {
		t.Errorf("LIMITS accuracy = %v, want 0.5", concepts[1].Accuracy)
	}
}

func TestAggregate_ConceptsWithoutAttemptsDropped(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", tags: []string{"GEOMETRY"}}),
		makeRecord(recSpec{id: "q2", tags: []string{"ALGEBRA"}, answer: "42", correct: true}),
	)

	concepts := Aggregate(s1, time.Now()).Concepts
	if len(concepts) != 1 || concepts[0].ConceptID != "ALGEBRA" {
		t.Errorf("concepts = %+v, want ALGEBRA only", concepts)
	}
}

func TestAggregate_ConceptKPIsUseAttemptedOnly(t *testing.T) {
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", tags: []string{"ALGEBRA"}, answer: "42", correct: true,
			changed: true, timeSec: 100, latency: 30, changes: 2}),
		makeRecord(recSpec{id: "q2", tags: []string{"ALGEBRA"}, timeSec: 50, latency: 0}),
	)

	c := Aggregate(s1, time.Now()).Concepts[0]
	if c.Attempted != 1 {
		t.Fatalf("attempted = %d, want 1", c.Attempted)
	}
	if c.KPIs.AvgTimeSpentSec != 100.0 {
		t.Errorf("avg time = %v, want 100 (unattempted dwell excluded)", c.KPIs.AvgTimeSpentSec)
	}
	if c.KPIs.AvgFirstAttemptLatencySec != 30.0 {
		t.Errorf("avg latency = %v, want 30", c.KPIs.AvgFirstAttemptLatencySec)
	}
	if c.KPIs.ChangedAnswerRate != 1.0 {
		t.Errorf("changed rate = %v, want 1", c.KPIs.ChangedAnswerRate)
	}
	if c.KPIs.AvgNumOptionChanges != 2.0 {
		t.Errorf("avg changes = %v, want 2", c.KPIs.AvgNumOptionChanges)
	}
}

func TestWorkQuality(t *testing.T) {
	tests := []struct {
		evidence  int
		attempted int
		accuracy  float64
		want      int
	}{
		{4, 5, 0.8, 8},  // coverage 0.8, high accuracy
		{4, 5, 0.7, 6},  // coverage 0.8, accuracy at boundary
		{3, 5, 0.6, 6},  // coverage 0.6
		{3, 5, 0.5, 4},  // coverage 0.6, accuracy at boundary
		{2, 5, 0.9, 3},  // coverage 0.4
		{0, 1, 1.0, 3},  // no evidence
		{1, 1, 1.0, 8},  // full coverage, perfect
		{5, 10, 0.5, 4}, // coverage exactly 0.5
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d_acc_%v", tt.evidence, tt.attempted, tt.accuracy), func(t *testing.T) {
			if got := workQuality(tt.evidence, tt.attempted, tt.accuracy); got != tt.want {
				t.Errorf("workQuality(%d, %d, %v) = %d, want %d",
					tt.evidence, tt.attempted, tt.accuracy, got, tt.want)
			}
		})
	}
}

func TestAggregate_ConceptConfidenceWeighting(t *testing.T) {
	// accuracy 1.0, work quality 8, time score 1-60/300 = 0.8.
	base := recSpec{id: "q1", tags: []string{"ALGEBRA"}, answer: "42", correct: true,
		timeSec: 60, withWork: true}

	slow := base
	slow.latency = 30
	c := Aggregate(stage1With(makeRecord(slow)), time.Now()).Concepts[0]
	// 0.4*1 + 0.2*0.8 + 0.2*1 + 0.2*0.8 = 0.92
	if c.ConceptConfidence.Value != 0.92 {
		t.Errorf("confidence = %v, want 0.92", c.ConceptConfidence.Value)
	}

	fast := base
	fast.latency = 10
	c = Aggregate(stage1With(makeRecord(fast)), time.Now()).Concepts[0]
	// Fast first attempts halve the impulsivity term: 0.92 - 0.1 = 0.82.
	if c.ConceptConfidence.Value != 0.82 {
		t.Errorf("confidence = %v, want 0.82", c.ConceptConfidence.Value)
	}

	if c.ConceptConfidence.Method != "kpi_weighted" {
		t.Errorf("method = %q, want kpi_weighted", c.ConceptConfidence.Method)
	}
	wantInputs := []string{"accuracy", "avg_time_spent_sec", "impulsivity_proxy", "revision_outcome_proxy", "work_quality_rating"}
	if len(c.ConceptConfidence.InputsUsed) != len(wantInputs) {
		t.Fatalf("inputs = %v, want %v", c.ConceptConfidence.InputsUsed, wantInputs)
	}
	for i, in := range wantInputs {
		if c.ConceptConfidence.InputsUsed[i] != in {
			t.Errorf("inputs[%d] = %q, want %q", i, c.ConceptConfidence.InputsUsed[i], in)
		}
	}
}

func TestAggregate_EvidenceIDsCappedAtFive(t *testing.T) {
	var records []report.QuestionRecord
	for i := 1; i <= 7; i++ {
		records = append(records, makeRecord(recSpec{
			id: fmt.Sprintf("q%d", i), tags: []string{"ALGEBRA"},
			answer: "42", correct: true, withWork: true,
		}))
	}

	wq := Aggregate(stage1With(records...), time.Now()).Concepts[0].WorkQualityRating
	if wq.EvidenceCount != 7 {
		t.Errorf("evidence_count = %d, want 7", wq.EvidenceCount)
	}
	if len(wq.EvidenceQuestionIDs) != 5 {
		t.Fatalf("evidence ids = %d, want 5", len(wq.EvidenceQuestionIDs))
	}
	if wq.EvidenceQuestionIDs[0] != "q1" || wq.EvidenceQuestionIDs[4] != "q5" {
		t.Errorf("evidence ids = %v, want first five in order", wq.EvidenceQuestionIDs)
	}
	if wq.Scale != "1-10" || wq.Source != "rule_based" {
		t.Errorf("rating framing = %q/%q, want 1-10/rule_based", wq.Scale, wq.Source)
	}
}

func TestAggregate_Meta(t *testing.T) {
	at := time.Date(2025, 3, 9, 14, 6, 0, 0, time.UTC)
	s2 := Aggregate(stage1With(), at)

	if s2.SchemaVersion != "stage2.v1" {
		t.Errorf("schema_version = %q, want stage2.v1", s2.SchemaVersion)
	}
	if s2.ReportMeta.ReportID != "rep_2025_03_09_140507_stage2" {
		t.Errorf("report_id = %q, want stage1 id + _stage2", s2.ReportMeta.ReportID)
	}
	if s2.ReportMeta.SourceStage1ReportID != "rep_2025_03_09_140507" {
		t.Errorf("source id = %q, want stage1 id", s2.ReportMeta.SourceStage1ReportID)
	}
	if s2.ReportMeta.GeneratedAtISO != "2025-03-09T14:06:00Z" {
		t.Errorf("generated_at = %q, want RFC3339 of the given time", s2.ReportMeta.GeneratedAtISO)
	}
}

func TestAggregate_EmptyReport(t *testing.T) {
	s2 := Aggregate(stage1With(), time.Now())

	k := s2.KPISummary
	if k.TimeSpentSec.Avg != 0 || k.ChangedAnswerRate != 0 || k.ImpulsivityIndex.Value != 0 {
		t.Errorf("summary = %+v, want all zeros", k)
	}
	if len(s2.Concepts) != 0 {
		t.Errorf("concepts = %d, want 0", len(s2.Concepts))
	}
}

func TestAggregate_QuizWideScenario(t *testing.T) {
	// Three easy algebra questions: one dwelled on but never answered,
	// one answered correctly after a revision, one untouched.
	s1 := stage1With(
		makeRecord(recSpec{id: "q1", diff: question.DifficultyEasy, timeSec: 30}),
		makeRecord(recSpec{id: "q2", diff: question.DifficultyEasy, answer: "42", correct: true,
			changed: true, timeSec: 150, latency: 25, changes: 1}),
		makeRecord(recSpec{id: "q3", diff: question.DifficultyEasy}),
	)

	s2 := Aggregate(s1, time.Now())
	k := s2.KPISummary

	if k.OverthinkingIndex.Value != 0.33 {
		t.Errorf("overthinking = %v, want 0.33", k.OverthinkingIndex.Value)
	}
	// Dwell on the unanswered question still counts in the global
	// time distribution.
	if k.TimeSpentSec.Avg != 90.0 {
		t.Errorf("avg time = %v, want 90", k.TimeSpentSec.Avg)
	}
	if k.ChangedAnswerRate != 1.0 {
		t.Errorf("changed rate = %v, want 1.0", k.ChangedAnswerRate)
	}
	want := RevisionEffect{ImprovedRate: 0.33, WorsenedRate: 0, NoChangeRate: 0.67}
	if k.RevisionEffect != want {
		t.Errorf("revision effect = %+v, want %+v", k.RevisionEffect, want)
	}
	if k.ImpulsivityIndex.Value != 0 {
		t.Errorf("impulsivity = %v, want 0 (25s latency)", k.ImpulsivityIndex.Value)
	}

	if len(s2.Concepts) != 1 {
		t.Fatalf("concepts = %d, want 1", len(s2.Concepts))
	}
	c := s2.Concepts[0]
	if c.ConceptID != "ALGEBRA" || c.Attempted != 1 || c.Correct != 1 || c.Accuracy != 1.0 {
		t.Errorf("concept = %+v, want ALGEBRA 1/1", c)
	}
}

func TestStatsHelpers(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("median odd = %v, want 2", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("median even = %v, want 2.5", got)
	}
	if got := median(nil); got != 0 {
		t.Errorf("median empty = %v, want 0", got)
	}
	if got := mean(nil); got != 0 {
		t.Errorf("mean empty = %v, want 0", got)
	}
	if got := round2(2.0 / 3.0); got != 0.67 {
		t.Errorf("round2(2/3) = %v, want 0.67", got)
	}
	if got := round1(17.25); got != 17.3 {
		t.Errorf("round1(17.25) = %v, want 17.3", got)
	}
}
