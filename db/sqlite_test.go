package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediscan/ml"
)

func initTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { Close() })
}

func TestSaveAndQueryPredictions(t *testing.T) {
	initTestDB(t)

	preds := []ml.Prediction{
		{RiskLevel: "low", RiskScore: 20, Confidence: 90, Model: ml.ModelGradientBoosting,
			Probabilities: ml.Probabilities{Low: 0.9, Moderate: 0.07, High: 0.03}},
		{RiskLevel: "high", RiskScore: 74, Confidence: 80, Model: ml.ModelEnsemble,
			Probabilities: ml.Probabilities{Low: 0.1, Moderate: 0.1, High: 0.8}},
	}
	for _, p := range preds {
		require.NoError(t, SavePrediction(p))
	}

	records, err := RecentPredictions(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "high", records[0].RiskLevel)
	assert.Equal(t, 74, records[0].RiskScore)
	assert.Equal(t, ml.ModelEnsemble, records[0].Model)
	assert.InDelta(t, 0.8, records[0].Probabilities.High, 1e-9)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestRecentPredictionsLimit(t *testing.T) {
	initTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, SavePrediction(ml.Prediction{
			RiskLevel: "low", RiskScore: 15 + i, Confidence: 90,
			Model: ml.ModelGradientBoosting,
		}))
	}
	records, err := RecentPredictions(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestUninitializedDatabase(t *testing.T) {
	require.NoError(t, Close())
	assert.Error(t, SavePrediction(ml.Prediction{}))
	_, err := RecentPredictions(5)
	assert.Error(t, err)
}
