// Package transcribe converts handwritten-work images into text via a
// vision-capable LLM and merges the result with typed work into one
// evidence blob per question. Transcription is best-effort: failures
// degrade to typed work only and never fail the caller.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/mathdrill/internal/llm"
)

// Config holds tunables for the vision transcription call.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds each service call.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.0,
		Timeout:     120 * time.Second,
	}
}

// Result is the transcription outcome for one question.
type Result struct {
	// OCRText is the transcribed handwritten work, empty when no image
	// was supplied or transcription failed.
	OCRText string
	// CombinedText merges typed and transcribed work into the single
	// evidence blob consumed by the report pipeline.
	CombinedText string
}

// Transcriber performs handwritten-work OCR.
type Transcriber struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// New creates a Transcriber. A nil provider is allowed and reduces
// every transcription to the typed work alone.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcriber{provider: provider, cfg: cfg, logger: logger}
}

const ocrInstruction = "Extract all mathematical work, equations, and text from this handwritten solution. Preserve mathematical notation."

// Transcribe produces the work evidence for one question. imageData
// may be nil when the student uploaded nothing; imageMIME defaults to
// JPEG when unset.
func (t *Transcriber) Transcribe(ctx context.Context, questionID, typedWork, imageMIME string, imageData []byte) Result {
	if len(imageData) == 0 {
		return Result{CombinedText: typedWork}
	}
	if t.provider == nil {
		t.logger.Debug("no vision provider, skipping transcription", "question_id", questionID)
		return Result{CombinedText: typedWork}
	}

	if imageMIME == "" {
		imageMIME = "image/jpeg"
	}

	ctx = llm.WithPurpose(ctx, "work-transcription")
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	resp, err := t.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: ocrInstruction},
		},
		Images:      []llm.Image{{MIME: imageMIME, Data: imageData}},
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		t.logger.Warn("ocr transcription failed, continuing with typed work only",
			"question_id", questionID, "error", err)
		return Result{CombinedText: typedWork}
	}

	ocr := strings.TrimSpace(string(resp.Content))
	return Result{OCRText: ocr, CombinedText: combineWork(typedWork, ocr)}
}

func combineWork(typed, ocr string) string {
	switch {
	case typed != "" && ocr != "":
		return fmt.Sprintf("Typed Work:\n%s\n\nHandwritten Work (OCR):\n%s", typed, ocr)
	case ocr != "":
		return ocr
	default:
		return typed
	}
}
