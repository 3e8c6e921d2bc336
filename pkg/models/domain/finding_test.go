package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityForSavings(t *testing.T) {
	tests := []struct {
		name    string
		savings float64
		want    Severity
	}{
		{"critical at boundary", 500, SeverityCritical},
		{"high just below critical", 499.99, SeverityHigh},
		{"high at boundary", 100, SeverityHigh},
		{"medium just below high", 99.99, SeverityMedium},
		{"medium at boundary", 20, SeverityMedium},
		{"low below medium", 19.99, SeverityLow},
		{"low at zero", 0, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityForSavings(tt.savings))
		})
	}
}

func TestSeverityRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		parsed, err := ParseSeverity(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSeverity("catastrophic")
	assert.Error(t, err)
}

func TestParseRecommendation(t *testing.T) {
	for _, r := range []Recommendation{
		RecommendTerminate, RecommendStop, RecommendResize, RecommendDelete,
		RecommendSuspend, RecommendDrop, RecommendSetAutoSuspend,
		RecommendGlacier, RecommendAbortMultipart,
	} {
		parsed, err := ParseRecommendation(string(r))
		assert.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRecommendation("obliterate")
	assert.Error(t, err)
}
