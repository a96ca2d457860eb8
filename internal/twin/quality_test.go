package twin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestScoreQuality(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		sources int
		want    float64
	}{
		{"too short", words(10), 0, 0.3},
		{"brief", words(40), 0, 0.6},
		{"ideal length", words(100), 0, 0.8},
		{"long", words(200), 0, 0.7},
		{"rambling", words(300), 0, 0.5},
		{"sources add credit", words(100), 2, 0.9},
		{"source credit capped", words(100), 10, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, scoreQuality(tt.answer, tt.sources), 0.001)
		})
	}
}
