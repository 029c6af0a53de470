package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		code       string
		confidence Confidence
	}{
		{
			name:       "usd list price",
			header:     "US List Price USD (1/1/2025 - 12/31/2025)",
			code:       "USD",
			confidence: ConfidenceHigh,
		},
		{
			name:       "cad excludes usd",
			header:     "Canada List Price CAD (beginning 1/1/2026)",
			code:       "CAD",
			confidence: ConfidenceHigh,
		},
		{
			name:       "gbp strong",
			header:     "UK List Price GBP 2026",
			code:       "GBP",
			confidence: ConfidenceHigh,
		},
		{
			name:       "pound symbol only",
			header:     "£ List 2026",
			code:       "GBP",
			confidence: ConfidenceMedium,
		},
		{
			name:       "nzd beats aud exclusion",
			header:     "NZ List Price NZD (beginning 1/1/2026)",
			code:       "NZD",
			confidence: ConfidenceHigh,
		},
		{
			name:       "near tie rejected",
			header:     "NZD List Price 2026",
			code:       "",
			confidence: ConfidenceNone,
		},
		{
			name:       "weak only is low confidence",
			header:     "NZ 2025",
			code:       "NZD",
			confidence: ConfidenceLow,
		},
		{
			name:       "ambiguous scores rejected",
			header:     "US Dollar",
			code:       "",
			confidence: ConfidenceNone,
		},
		{
			name:       "no signals",
			header:     "Quantity",
			code:       "",
			confidence: ConfidenceNone,
		},
		{
			name:       "zar rand",
			header:     "South African Rand 2025",
			code:       "ZAR",
			confidence: ConfidenceHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, confidence := DetectCurrency(tt.header)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.confidence, confidence)
		})
	}
}

func TestConfidenceString(t *testing.T) {
	assert.Equal(t, "high", ConfidenceHigh.String())
	assert.Equal(t, "medium", ConfidenceMedium.String())
	assert.Equal(t, "low", ConfidenceLow.String())
	assert.Equal(t, "none", ConfidenceNone.String())
}
