// Package quiz holds the state of one quiz run: the fetched questions,
// the student's responses, and the interaction telemetry the analytics
// pipeline consumes. The collection surface mutates a Session only
// through its methods; the pipeline reads it as a value.
package quiz

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathdrill/internal/question"
)

// Response is the student's submission for one question.
type Response struct {
	// FinalAnswer is the latest non-empty answer. Empty means the
	// question was never attempted.
	FinalAnswer string `json:"final_answer"`

	// ChangedAnswer is true once the answer has been edited after the
	// first attempt.
	ChangedAnswer bool `json:"changed_answer"`

	// TypedWork is the student's typed working, possibly empty.
	TypedWork string `json:"typed_work,omitempty"`

	// SubmittedAt is when the final answer was last recorded.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Image is an uploaded photo of handwritten work.
type Image struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Session is one quiz run. It is fully serializable so a run can be
// saved and re-analyzed later.
type Session struct {
	ID        string              `json:"id"`
	Topic     string              `json:"topic"`
	StartedAt time.Time           `json:"started_at"`
	Questions []question.Question `json:"questions"`

	// Responses is keyed by question id; absence means unattempted.
	Responses map[string]Response `json:"responses"`

	// ShownAt records when each question was first displayed.
	ShownAt map[string]time.Time `json:"shown_at"`

	// FirstAttemptLatencySec records, once per question, the seconds
	// between first display and the first non-empty answer.
	FirstAttemptLatencySec map[string]float64 `json:"first_attempt_latency_sec"`

	// OptionChanges counts answer edits after the first attempt.
	OptionChanges map[string]int `json:"option_changes"`

	// Images holds uploaded handwritten work, keyed by question id.
	Images map[string]Image `json:"images,omitempty"`
}

// NewSession starts a session over the given questions.
func NewSession(topic string, questions []question.Question) *Session {
	return &Session{
		ID:                     uuid.NewString(),
		Topic:                  topic,
		StartedAt:              time.Now(),
		Questions:              questions,
		Responses:              make(map[string]Response),
		ShownAt:                make(map[string]time.Time),
		FirstAttemptLatencySec: make(map[string]float64),
		OptionChanges:          make(map[string]int),
		Images:                 make(map[string]Image),
	}
}

// MarkShown records when a question is first displayed. Revisits do not
// reset the clock: time-on-task measures total dwell since first view.
func (s *Session) MarkShown(questionID string, now time.Time) {
	if _, seen := s.ShownAt[questionID]; !seen {
		s.ShownAt[questionID] = now
	}
}

// RecordAnswer captures an answer edit. Empty input and unchanged
// re-submissions are ignored. The first non-empty answer records the
// first-attempt latency exactly once; each later edit to a different
// value increments the option-change count.
func (s *Session) RecordAnswer(questionID, answer string, now time.Time) {
	prev := s.Responses[questionID]
	if answer == "" || answer == prev.FinalAnswer {
		return
	}

	if _, recorded := s.FirstAttemptLatencySec[questionID]; !recorded {
		latency := 0.0
		if shown, ok := s.ShownAt[questionID]; ok {
			latency = now.Sub(shown).Seconds()
		}
		s.FirstAttemptLatencySec[questionID] = latency
	}

	if _, tracked := s.OptionChanges[questionID]; !tracked {
		s.OptionChanges[questionID] = 0
	} else {
		s.OptionChanges[questionID]++
	}

	s.Responses[questionID] = Response{
		FinalAnswer:   answer,
		ChangedAnswer: s.OptionChanges[questionID] > 0,
		TypedWork:     prev.TypedWork,
		SubmittedAt:   now,
	}
}

// RecordTypedWork attaches typed working to a question without touching
// the answer telemetry.
func (s *Session) RecordTypedWork(questionID, text string) {
	r := s.Responses[questionID]
	r.TypedWork = text
	s.Responses[questionID] = r
}

// AttachImage stores an uploaded handwritten-work image for a question.
func (s *Session) AttachImage(questionID, name, mime string, data []byte) {
	s.Images[questionID] = Image{Name: name, MIME: mime, Data: data}
}

// Attempted reports whether the question has a non-empty final answer.
func (s *Session) Attempted(questionID string) bool {
	return s.Responses[questionID].FinalAnswer != ""
}

// AttemptedCount returns the number of questions with a final answer.
func (s *Session) AttemptedCount() int {
	n := 0
	for _, q := range s.Questions {
		if s.Attempted(q.QuestionID) {
			n++
		}
	}
	return n
}

// Save writes the session as indented JSON.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load reads a session saved by Save.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	if s.Responses == nil {
		s.Responses = make(map[string]Response)
	}
	if s.ShownAt == nil {
		s.ShownAt = make(map[string]time.Time)
	}
	if s.FirstAttemptLatencySec == nil {
		s.FirstAttemptLatencySec = make(map[string]float64)
	}
	if s.OptionChanges == nil {
		s.OptionChanges = make(map[string]int)
	}
	if s.Images == nil {
		s.Images = make(map[string]Image)
	}
	return &s, nil
}
