// Package judge decides whether a free-form student answer is
// mathematically equivalent to the canonical answer. The primary path
// asks an LLM for a one-word verdict; without a provider, or when a
// call fails, it degrades to exact string comparison.
package judge

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/abhisek/mathdrill/internal/llm"
)

// Config holds tunables for the LLM answer check.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds each service call. Expiry counts as a service
	// failure and triggers the fallback comparison.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   32,
		Temperature: 0.0,
		Timeout:     60 * time.Second,
	}
}

// Method records which comparison path produced a verdict.
type Method string

const (
	// MethodService means the LLM equivalence check decided.
	MethodService Method = "service"
	// MethodFallback means exact string comparison decided.
	MethodFallback Method = "fallback"
)

// Verdict is the outcome of an answer check.
type Verdict struct {
	Correct bool
	Method  Method
}

// Judge performs answer-equivalence checks.
type Judge struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// New creates a Judge. A nil provider is allowed and pins every check
// to the fallback path.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Judge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{provider: provider, cfg: cfg, logger: logger}
}

const checkSystemPrompt = `You are a mathematical answer checker. Determine if the student's answer is mathematically equivalent to the correct answer.`

var checkUserTemplate = template.Must(template.New("check").Parse(`Question: {{.QuestionText}}

Expected Answer: {{.CorrectAnswer}}
Student Answer: {{.StudentAnswer}}
Answer Type: {{.AnswerType}}

Consider:
- Mathematical equivalence (e.g., 1/2 = 0.5 = 50%)
- Simplified vs unsimplified forms (e.g., 2/4 = 1/2)
- Different notations (e.g., pi vs π, sqrt(2) vs √2)
- Rounding tolerance for numerical answers (±0.01)
- Algebraic equivalence (e.g., x+1 vs 1+x)

Respond with ONLY one word: "CORRECT" or "INCORRECT"`))

type checkInput struct {
	QuestionText  string
	CorrectAnswer string
	StudentAnswer string
	AnswerType    string
}

// Check compares a student answer against the canonical answer. It
// always returns a verdict; service failures are logged and answered
// by the fallback comparison.
func (j *Judge) Check(ctx context.Context, studentAnswer, correctAnswer, questionText, answerType string) Verdict {
	if j.provider == nil {
		return fallbackVerdict(studentAnswer, correctAnswer)
	}

	userMsg, err := buildCheckMessage(checkInput{
		QuestionText:  questionText,
		CorrectAnswer: correctAnswer,
		StudentAnswer: studentAnswer,
		AnswerType:    answerType,
	})
	if err != nil {
		j.logger.Warn("answer check failed, using string comparison", "error", err)
		return fallbackVerdict(studentAnswer, correctAnswer)
	}

	ctx = llm.WithPurpose(ctx, "answer-check")
	if j.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
	}

	resp, err := j.provider.Generate(ctx, llm.Request{
		System: checkSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		j.logger.Warn("answer check failed, using string comparison", "error", err)
		return fallbackVerdict(studentAnswer, correctAnswer)
	}

	result := strings.ToUpper(strings.TrimSpace(string(resp.Content)))
	return Verdict{Correct: strings.Contains(result, "CORRECT"), Method: MethodService}
}

func buildCheckMessage(in checkInput) (string, error) {
	var buf bytes.Buffer
	if err := checkUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fallbackVerdict(studentAnswer, correctAnswer string) Verdict {
	equal := strings.EqualFold(strings.TrimSpace(studentAnswer), strings.TrimSpace(correctAnswer))
	return Verdict{Correct: equal, Method: MethodFallback}
}
