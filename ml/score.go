package ml

// Per-class score anchors: the typical 0-100 score midpoint of each risk
// tier. Configuration constants, not learned.
const (
	scoreWeightLow      = 15.0
	scoreWeightModerate = 50.0
	scoreWeightHigh     = 85.0
)

// RiskScore collapses a probability distribution into a 0-100 score via the
// fixed per-class weights. The int conversion truncates rather than rounds;
// boundary values downstream depend on this exact behavior.
func RiskScore(dist []float64) int {
	return int(dist[RiskLow]*scoreWeightLow +
		dist[RiskModerate]*scoreWeightModerate +
		dist[RiskHigh]*scoreWeightHigh)
}

// Confidence is the probability mass on the chosen class as a truncated
// percentage.
func Confidence(dist []float64, label int) int {
	return int(dist[label] * 100)
}
