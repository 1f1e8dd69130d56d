package collect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/abhisek/mathdrill/internal/question"
	"github.com/abhisek/mathdrill/internal/quiz"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testQuestions(n int) []question.Question {
	qs := make([]question.Question, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, question.Question{
			QuestionID:    fmt.Sprintf("OLY_%d", i),
			QuestionType:  question.TypeNumerical,
			Difficulty:    question.DifficultyEasy,
			ConceptTags:   []string{"ALGEBRA"},
			QuestionText:  fmt.Sprintf("Question number %d?", i),
			CorrectAnswer: "4",
			AnswerType:    "integer",
		})
	}
	return qs
}

func runScript(t *testing.T, input string, n int) (*quiz.Session, string) {
	t.Helper()
	sess := quiz.NewSession("algebra", testQuestions(n))
	var out bytes.Buffer
	c := New(strings.NewReader(input), &out, quietLogger())
	if err := c.Run(sess); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return sess, out.String()
}

func TestRun_AnswersAdvanceThroughQuestions(t *testing.T) {
	sess, _ := runScript(t, "4\n7\n9\n", 3)

	if got := sess.AttemptedCount(); got != 3 {
		t.Fatalf("attempted = %d, want 3", got)
	}
	for qid, want := range map[string]string{"OLY_1": "4", "OLY_2": "7", "OLY_3": "9"} {
		if got := sess.Responses[qid].FinalAnswer; got != want {
			t.Errorf("%s answer = %q, want %q", qid, got, want)
		}
	}
}

func TestRun_SkipLeavesUnattempted(t *testing.T) {
	sess, _ := runScript(t, ":next\n5\n", 2)

	if sess.Attempted("OLY_1") {
		t.Error("skipped question should stay unattempted")
	}
	if got := sess.Responses["OLY_2"].FinalAnswer; got != "5" {
		t.Errorf("OLY_2 answer = %q, want 5", got)
	}
	if _, shown := sess.ShownAt["OLY_1"]; !shown {
		t.Error("skipped question was still shown")
	}
}

func TestRun_PrevAllowsRevision(t *testing.T) {
	sess, out := runScript(t, "4\n:prev\n10\n7\n", 2)

	resp := sess.Responses["OLY_1"]
	if resp.FinalAnswer != "10" {
		t.Errorf("revised answer = %q, want 10", resp.FinalAnswer)
	}
	if !resp.ChangedAnswer {
		t.Error("revision should mark the answer changed")
	}
	if got := sess.OptionChanges["OLY_1"]; got != 1 {
		t.Errorf("option changes = %d, want 1", got)
	}
	if !strings.Contains(out, "Current answer: 4") {
		t.Error("revisit should show the current answer")
	}
	if got := sess.Responses["OLY_2"].FinalAnswer; got != "7" {
		t.Errorf("OLY_2 answer = %q, want 7", got)
	}
}

func TestRun_GotoJumpsToQuestion(t *testing.T) {
	sess, _ := runScript(t, ":goto 3\n9\n", 3)

	if got := sess.Responses["OLY_3"].FinalAnswer; got != "9" {
		t.Errorf("OLY_3 answer = %q, want 9", got)
	}
	if sess.Attempted("OLY_1") || sess.Attempted("OLY_2") {
		t.Error("jumped-over questions should stay unattempted")
	}
}

func TestRun_GotoOutOfRange(t *testing.T) {
	sess, out := runScript(t, ":goto 9\n4\n", 2)

	if !strings.Contains(out, "usage: :goto <1-2>") {
		t.Errorf("missing usage hint in output:\n%s", out)
	}
	if got := sess.Responses["OLY_1"].FinalAnswer; got != "4" {
		t.Errorf("OLY_1 answer = %q, want 4", got)
	}
}

func TestRun_WorkCapture(t *testing.T) {
	sess, _ := runScript(t, ":work\n2x = 8\nx = 4\n.\n4\n", 1)

	resp := sess.Responses["OLY_1"]
	if resp.TypedWork != "2x = 8\nx = 4" {
		t.Errorf("typed work = %q", resp.TypedWork)
	}
	if resp.FinalAnswer != "4" {
		t.Errorf("answer = %q, want 4", resp.FinalAnswer)
	}
}

func TestRun_EmptyWorkNotRecorded(t *testing.T) {
	sess, out := runScript(t, ":work\n.\n4\n", 1)

	if sess.Responses["OLY_1"].TypedWork != "" {
		t.Error("blank work block should not be stored")
	}
	if !strings.Contains(out, "No work recorded.") {
		t.Error("missing feedback for blank work")
	}
}

func TestRun_ImageAttach(t *testing.T) {
	sess := quiz.NewSession("algebra", testQuestions(1))
	var out bytes.Buffer
	c := New(strings.NewReader(":image work/solution.png\n4\n"), &out, quietLogger())
	c.readImage = func(path string) ([]byte, error) {
		if path != "work/solution.png" {
			return nil, fmt.Errorf("unexpected path %q", path)
		}
		return []byte{0x89, 0x50, 0x4E, 0x47}, nil
	}

	if err := c.Run(sess); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	img, ok := sess.Images["OLY_1"]
	if !ok {
		t.Fatal("image not attached")
	}
	if img.Name != "solution.png" || img.MIME != "image/png" || len(img.Data) != 4 {
		t.Errorf("image = %+v", img)
	}
}

func TestRun_ImageReadFailureContinues(t *testing.T) {
	sess := quiz.NewSession("algebra", testQuestions(1))
	var out bytes.Buffer
	c := New(strings.NewReader(":image missing.jpg\n4\n"), &out, quietLogger())
	c.readImage = func(string) ([]byte, error) {
		return nil, errors.New("no such file")
	}

	if err := c.Run(sess); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(sess.Images) != 0 {
		t.Error("failed read should not attach an image")
	}
	if !strings.Contains(out.String(), "Cannot read image") {
		t.Error("missing read-failure feedback")
	}
	if got := sess.Responses["OLY_1"].FinalAnswer; got != "4" {
		t.Errorf("answer after failed attach = %q, want 4", got)
	}
}

func TestRun_FinishEndsEarly(t *testing.T) {
	sess, _ := runScript(t, "4\n:finish\n", 3)

	if got := sess.AttemptedCount(); got != 1 {
		t.Errorf("attempted = %d, want 1", got)
	}
}

func TestRun_EOFEndsQuiz(t *testing.T) {
	sess, _ := runScript(t, "4\n", 2)

	if got := sess.AttemptedCount(); got != 1 {
		t.Errorf("attempted = %d, want 1", got)
	}
	if _, shown := sess.ShownAt["OLY_2"]; !shown {
		t.Error("second question should have been shown before EOF")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	sess, out := runScript(t, ":bogus\n4\n", 1)

	if !strings.Contains(out, "unknown command :bogus") {
		t.Errorf("missing unknown-command feedback:\n%s", out)
	}
	if got := sess.Responses["OLY_1"].FinalAnswer; got != "4" {
		t.Errorf("answer = %q, want 4", got)
	}
}

func TestRun_EmptySessionRejected(t *testing.T) {
	c := New(strings.NewReader(""), io.Discard, quietLogger())
	if err := c.Run(quiz.NewSession("algebra", nil)); err == nil {
		t.Fatal("expected error for empty session")
	}
}

func TestRun_ShowsQuestionMetadata(t *testing.T) {
	_, out := runScript(t, "4\n", 1)

	for _, want := range []string{
		"Quiz: algebra (1 questions)",
		"Question 1/1 [easy]",
		"(ALGEBRA)",
		"Question number 1?",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMimeForPath(t *testing.T) {
	cases := map[string]string{
		"a.png":     "image/png",
		"b.PNG":     "image/png",
		"c.webp":    "image/webp",
		"d.gif":     "image/gif",
		"e.jpg":     "image/jpeg",
		"f.jpeg":    "image/jpeg",
		"g.unknown": "image/jpeg",
		"noext":     "image/jpeg",
		"dir/h.png": "image/png",
	}
	for path, want := range cases {
		if got := mimeForPath(path); got != want {
			t.Errorf("mimeForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
