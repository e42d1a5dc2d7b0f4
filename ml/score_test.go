package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskScoreBoundaryTruncation(t *testing.T) {
	// 0.1*15 + 0.1*50 + 0.8*85 = 74.5 and must truncate, not round.
	dist := []float64{0.1, 0.1, 0.8}
	assert.Equal(t, 74, RiskScore(dist))

	label := ArgMax(dist)
	assert.Equal(t, RiskHigh, label)
	assert.Equal(t, "high", RiskLevelName(label))
	assert.Equal(t, 80, Confidence(dist, label))
}

func TestRiskScoreRange(t *testing.T) {
	assert.Equal(t, 15, RiskScore([]float64{1, 0, 0}))
	assert.Equal(t, 85, RiskScore([]float64{0, 0, 1}))
	assert.Equal(t, 50, RiskScore([]float64{0, 1, 0}))
}

func TestRiskScoreMonotonic(t *testing.T) {
	// Shifting mass from low to high never decreases the score.
	prev := -1
	for shift := 0.0; shift <= 0.5; shift += 0.05 {
		score := RiskScore([]float64{0.5 - shift, 0.5, shift})
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestArgMaxTieResolvesToLowestOrdinal(t *testing.T) {
	assert.Equal(t, RiskLow, ArgMax([]float64{0.4, 0.4, 0.2}))
	assert.Equal(t, RiskLow, ArgMax([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}))
	assert.Equal(t, RiskModerate, ArgMax([]float64{0.2, 0.4, 0.4}))
}

func TestRiskLevelNameOutOfRange(t *testing.T) {
	assert.Equal(t, "unknown", RiskLevelName(-1))
	assert.Equal(t, "unknown", RiskLevelName(NumClasses))
}
