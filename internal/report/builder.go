package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/mathdrill/internal/judge"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/transcribe"
)

// AnswerJudge decides whether a submitted answer is correct.
type AnswerJudge interface {
	Check(ctx context.Context, studentAnswer, correctAnswer, questionText, answerType string) judge.Verdict
}

// WorkTranscriber turns optional work evidence into text.
type WorkTranscriber interface {
	Transcribe(ctx context.Context, questionID, typedWork, imageMIME string, imageData []byte) transcribe.Result
}

// Builder assembles the raw report from a finished session.
type Builder struct {
	judge       AnswerJudge
	transcriber WorkTranscriber
	logger      *slog.Logger

	// OnProgress, when set, observes each completed question.
	OnProgress func(done, total int)
}

// NewBuilder creates a Builder.
func NewBuilder(j AnswerJudge, tr WorkTranscriber, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{judge: j, transcriber: tr, logger: logger}
}

// Build walks every question in order, judging attempted answers and
// transcribing their work evidence. Unattempted questions are recorded
// as incorrect without any service call. Questions are processed
// strictly sequentially; a judge or transcription failure degrades
// that single question only. The returned error is non-nil only when
// ctx is cancelled between questions.
func (b *Builder) Build(ctx context.Context, sess *quiz.Session) (*Stage1Report, error) {
	now := time.Now().UTC()
	total := len(sess.Questions)

	summary := ScoreSummary{MaxScore: total}
	records := make([]QuestionRecord, 0, total)

	for idx, q := range sess.Questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp := sess.Responses[q.QuestionID]
		attempted := resp.FinalAnswer != ""

		var isCorrect bool
		if attempted {
			verdict := b.judge.Check(ctx, resp.FinalAnswer, q.CorrectAnswer, q.QuestionText, q.AnswerType)
			isCorrect = verdict.Correct
			b.logger.Debug("answer judged",
				"question_id", q.QuestionID, "correct", verdict.Correct, "method", verdict.Method)
			if isCorrect {
				summary.CorrectCount++
			} else {
				summary.IncorrectCount++
			}
		} else {
			summary.UnattemptedCount++
		}

		img, uploaded := sess.Images[q.QuestionID]
		var work transcribe.Result
		if attempted {
			work = b.transcriber.Transcribe(ctx, q.QuestionID, resp.TypedWork, img.MIME, img.Data)
		} else {
			work = transcribe.Result{CombinedText: resp.TypedWork}
		}

		timeSpent := 0
		if shown, ok := sess.ShownAt[q.QuestionID]; ok {
			timeSpent = int(now.Sub(shown).Seconds())
		}

		numChanges := sess.OptionChanges[q.QuestionID]
		outcome := RevisionNone
		if numChanges > 0 {
			if isCorrect {
				outcome = RevisionImproved
			} else {
				outcome = RevisionWorsened
			}
		}

		records = append(records, QuestionRecord{
			QuestionID:   q.QuestionID,
			QuestionType: q.QuestionType,
			Difficulty:   q.Difficulty,
			ConceptTags:  q.ConceptTags,
			Submission: Submission{
				FinalAnswer:   resp.FinalAnswer,
				CorrectAnswer: q.CorrectAnswer,
				IsCorrect:     isCorrect,
				ChangedAnswer: resp.ChangedAnswer,
			},
			KPIs: KPISet{
				TimeSpentSec:           timeSpent,
				FirstAttemptLatencySec: int(sess.FirstAttemptLatencySec[q.QuestionID]),
				NumOptionChanges:       numChanges,
				RevisionOutcome:        outcome,
			},
			OptionalWork: OptionalWork{
				HandwrittenUploaded: uploaded,
				TypedWorkProvided:   resp.TypedWork != "",
				TypedWorkText:       resp.TypedWork,
				HandwrittenWorkOCR:  work.OCRText,
				CombinedWorkText:    work.CombinedText,
			},
		})

		if b.OnProgress != nil {
			b.OnProgress(idx+1, total)
		}
	}

	summary.RawScore = summary.CorrectCount

	return &Stage1Report{
		SchemaVersion: SchemaVersion,
		ReportMeta: Meta{
			ReportID:       NewReportID(now),
			GeneratedAtISO: now.Format(time.RFC3339),
			ExamTarget:     ExamTarget,
			Subject:        Subject,
			AssessmentID:   AssessmentID(sess.Topic),
			NumQuestions:   total,
			TimeLimitSec:   TimeLimitSec,
		},
		ScoreSummary: summary,
		Questions:    records,
	}, nil
}

// NewReportID derives the report identifier from the generation time.
func NewReportID(now time.Time) string {
	return "rep_" + now.UTC().Format("2006_01_02_150405")
}

// AssessmentID derives the assessment identifier from the quiz topic.
func AssessmentID(topic string) string {
	slug := strings.ReplaceAll(strings.ToLower(topic), " ", "_")
	return fmt.Sprintf("quiz_%s_v1", slug)
}
