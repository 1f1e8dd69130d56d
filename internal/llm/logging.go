package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// loggingProvider decorates a Provider with a structured log entry per
// request: purpose, model, latency, token usage, and estimated cost.
type loggingProvider struct {
	inner  Provider
	logger *slog.Logger
}

// WithLogging wraps a Provider with request/response logging.
// A nil logger falls back to slog.Default().
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingProvider{inner: p, logger: logger}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		slog.String("purpose", purpose),
		slog.String("model", l.inner.ModelID()),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		slog.Int("images", len(req.Images)),
	}

	if resp != nil {
		attrs = append(attrs,
			slog.String("served_by", resp.Model),
			slog.Int("input_tokens", resp.Usage.InputTokens),
			slog.Int("output_tokens", resp.Usage.OutputTokens),
		)
		if c := LookupCost(resp.Model); c != nil {
			attrs = append(attrs,
				slog.String("est_cost_usd", fmt.Sprintf("%.6f", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))),
			)
		}
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.Warn("llm request failed", attrs...)
		return resp, err
	}

	l.logger.Info("llm request", attrs...)
	l.logger.Debug("llm exchange",
		slog.String("purpose", purpose),
		slog.String("request", serializeRequest(req)),
		slog.String("response", string(resp.Content)),
	)

	return resp, err
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	for _, img := range req.Images {
		b.WriteString(fmt.Sprintf("[image %s, %d bytes]\n", img.MIME, len(img.Data)))
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
