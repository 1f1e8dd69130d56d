package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		name      string
		modelID   string
		wantKnown bool
		wantIn    float64
		wantOut   float64
	}{
		{"anthropic haiku", "claude-3-5-haiku-20241022", true, 0.8, 4},
		{"openai mini", "gpt-4o-mini", true, 0.15, 0.6},
		{"gemini flash", "gemini-2.0-flash", true, 0.1, 0.4},
		{"openrouter slug", "google/gemini-2.0-flash-001", true, 0.1, 0.4},
		{"openrouter free tier", "google/gemini-2.0-flash-exp", true, 0, 0},
		{"unknown model", "some-future-model", false, 0, 0},
		{"empty id", "", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := LookupCost(tt.modelID)
			if !tt.wantKnown {
				assert.Nil(t, cost)
				return
			}
			require.NotNil(t, cost)
			assert.Equal(t, tt.wantIn, cost.InputPerMTok)
			assert.Equal(t, tt.wantOut, cost.OutputPerMTok)
		})
	}
}

func TestLookupCost_ReturnsCopy(t *testing.T) {
	a := LookupCost("gpt-4o-mini")
	require.NotNil(t, a)
	a.InputPerMTok = 999

	b := LookupCost("gpt-4o-mini")
	require.NotNil(t, b)
	assert.Equal(t, 0.15, b.InputPerMTok)
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 2, OutputPerMTok: 10}

	assert.InDelta(t, 0.0, c.Cost(0, 0), 1e-12)
	assert.InDelta(t, 2.0, c.Cost(1_000_000, 0), 1e-12)
	assert.InDelta(t, 10.0, c.Cost(0, 1_000_000), 1e-12)
	assert.InDelta(t, 0.0021, c.Cost(800, 50), 1e-12)
}
