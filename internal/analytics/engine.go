package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/mathdrill/internal/question"
	"github.com/abhisek/mathdrill/internal/report"
)

const (
	// easyTimeThresholdSec flags easy questions as overthought past
	// this dwell time.
	easyTimeThresholdSec = 120
	// impulsiveThresholdSec flags first attempts faster than this as
	// impulsive.
	impulsiveThresholdSec = 20
	// timeScoreNormSec is the dwell time at which the confidence time
	// score bottoms out.
	timeScoreNormSec = 300
)

// Aggregate computes the Stage-2 report from a raw report. The result
// depends only on the input and now.
func Aggregate(s1 *report.Stage1Report, now time.Time) *Stage2Report {
	qs := s1.Questions

	var timeSpent, latency, optionChanges []float64
	changedAnswers, totalAttempted := 0, 0
	improved, worsened, noChange := 0, 0, 0
	easyCount, overthinkingCount, impulsiveCount := 0, 0, 0

	for _, q := range qs {
		if q.KPIs.TimeSpentSec > 0 {
			timeSpent = append(timeSpent, float64(q.KPIs.TimeSpentSec))
		}
		if q.KPIs.FirstAttemptLatencySec > 0 {
			latency = append(latency, float64(q.KPIs.FirstAttemptLatencySec))
		}
		optionChanges = append(optionChanges, float64(q.KPIs.NumOptionChanges))

		if q.Submission.ChangedAnswer {
			changedAnswers++
		}
		if q.Submission.FinalAnswer != "" {
			totalAttempted++
		}

		switch q.KPIs.RevisionOutcome {
		case report.RevisionImproved:
			improved++
		case report.RevisionWorsened:
			worsened++
		default:
			noChange++
		}

		if q.Difficulty == question.DifficultyEasy {
			easyCount++
			if q.KPIs.TimeSpentSec > easyTimeThresholdSec {
				overthinkingCount++
			}
		}
		if l := q.KPIs.FirstAttemptLatencySec; l > 0 && l < impulsiveThresholdSec {
			impulsiveCount++
		}
	}

	totalRevisions := improved + worsened + noChange

	summary := KPISummary{
		TimeSpentSec: Distribution{
			Avg:    round1(mean(timeSpent)),
			Median: round1(median(timeSpent)),
		},
		FirstAttemptLatencySec: Distribution{
			Avg:    round1(mean(latency)),
			Median: round1(median(latency)),
		},
		NumOptionChanges: Distribution{
			Avg:    round2(mean(optionChanges)),
			Median: round1(median(optionChanges)),
		},
		ChangedAnswerRate: round2(ratio(changedAnswers, totalAttempted)),
		RevisionEffect: RevisionEffect{
			ImprovedRate: round2(ratio(improved, totalRevisions)),
			WorsenedRate: round2(ratio(worsened, totalRevisions)),
			NoChangeRate: round2(ratio(noChange, totalRevisions)),
		},
		OverthinkingIndex: OverthinkingIndex{
			Value:                round2(ratio(overthinkingCount, easyCount)),
			EasyTimeThresholdSec: easyTimeThresholdSec,
		},
		ImpulsivityIndex: ImpulsivityIndex{
			Value:                 round2(ratio(impulsiveCount, totalAttempted)),
			ImpulsiveThresholdSec: impulsiveThresholdSec,
		},
	}

	return &Stage2Report{
		SchemaVersion: SchemaVersion,
		ReportMeta: Meta{
			ReportID:             s1.ReportMeta.ReportID + "_stage2",
			SourceStage1ReportID: s1.ReportMeta.ReportID,
			GeneratedAtISO:       now.UTC().Format(time.RFC3339),
		},
		KPISummary: summary,
		Concepts:   aggregateConcepts(qs),
	}
}

// conceptAccum gathers per-concept raw values before rounding.
type conceptAccum struct {
	attempted      int
	correct        int
	timeSpent      []float64
	latency        []float64
	optionChanges  []float64
	changedAnswers int
	evidence       []string
}

// aggregateConcepts fans each question out to every concept tag it
// carries, then scores each concept that saw at least one attempt.
// Concepts are emitted in first-seen order.
func aggregateConcepts(qs []report.QuestionRecord) []ConceptAggregate {
	accum := make(map[string]*conceptAccum)
	var order []string

	for _, q := range qs {
		for _, tag := range q.ConceptTags {
			a, ok := accum[tag]
			if !ok {
				a = &conceptAccum{}
				accum[tag] = a
				order = append(order, tag)
			}

			if q.Submission.FinalAnswer == "" {
				continue
			}
			a.attempted++
			if q.Submission.IsCorrect {
				a.correct++
			}
			if q.KPIs.TimeSpentSec > 0 {
				a.timeSpent = append(a.timeSpent, float64(q.KPIs.TimeSpentSec))
			}
			if q.KPIs.FirstAttemptLatencySec > 0 {
				a.latency = append(a.latency, float64(q.KPIs.FirstAttemptLatencySec))
			}
			a.optionChanges = append(a.optionChanges, float64(q.KPIs.NumOptionChanges))
			if q.Submission.ChangedAnswer {
				a.changedAnswers++
			}
			if q.OptionalWork.TypedWorkProvided || q.OptionalWork.HandwrittenUploaded {
				a.evidence = append(a.evidence, q.QuestionID)
			}
		}
	}

	concepts := make([]ConceptAggregate, 0, len(order))
	for _, tag := range order {
		a := accum[tag]
		if a.attempted == 0 {
			continue
		}
		concepts = append(concepts, scoreConcept(tag, a))
	}
	return concepts
}

func scoreConcept(tag string, a *conceptAccum) ConceptAggregate {
	accuracy := float64(a.correct) / float64(a.attempted)
	quality := workQuality(len(a.evidence), a.attempted, accuracy)

	timeScore := math.Max(0, 1-mean(a.timeSpent)/timeScoreNormSec)
	impulsivityScore := 0.5
	if mean(a.latency) > impulsiveThresholdSec {
		impulsivityScore = 1
	}

	// Each term is clamped so the weighted sum stays within [0,1].
	confidence := 0.4*clamp01(accuracy) +
		0.2*clamp01(timeScore) +
		0.2*clamp01(impulsivityScore) +
		0.2*clamp01(float64(quality)/10)

	evidenceIDs := a.evidence
	if len(evidenceIDs) > 5 {
		evidenceIDs = evidenceIDs[:5]
	}

	return ConceptAggregate{
		ConceptID: tag,
		Attempted: a.attempted,
		Correct:   a.correct,
		Accuracy:  round2(accuracy),
		KPIs: ConceptKPIs{
			AvgTimeSpentSec:              round1(mean(a.timeSpent)),
			MedianTimeSpentSec:           round1(median(a.timeSpent)),
			AvgFirstAttemptLatencySec:    round1(mean(a.latency)),
			MedianFirstAttemptLatencySec: round1(median(a.latency)),
			ChangedAnswerRate:            round2(ratio(a.changedAnswers, a.attempted)),
			AvgNumOptionChanges:          round2(mean(a.optionChanges)),
		},
		WorkQualityRating: WorkQualityRating{
			Scale:               "1-10",
			Value:               quality,
			EvidenceCount:       len(a.evidence),
			EvidenceQuestionIDs: evidenceIDs,
			Source:              "rule_based",
		},
		ConceptConfidence: ConceptConfidence{
			Value:  round2(confidence),
			Method: "kpi_weighted",
			InputsUsed: []string{
				"accuracy",
				"avg_time_spent_sec",
				"impulsivity_proxy",
				"revision_outcome_proxy",
				"work_quality_rating",
			},
		},
	}
}

// workQuality rates evidence coverage on a 1-10 scale from how many
// attempted questions carry work and how accurate the concept is.
func workQuality(evidenceCount, attempted int, accuracy float64) int {
	coverage := float64(evidenceCount)
	switch {
	case coverage >= float64(attempted)*0.8:
		if accuracy > 0.7 {
			return 8
		}
		return 6
	case coverage >= float64(attempted)*0.5:
		if accuracy > 0.5 {
			return 6
		}
		return 4
	default:
		return 3
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
