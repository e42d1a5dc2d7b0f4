package ml

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifacts trains small models and saves the full artifact set to dir.
func writeArtifacts(t *testing.T, dir string) {
	t.Helper()
	scaler, gb, lr, _, _ := fitSmallModels(t)
	require.NoError(t, scaler.Save(filepath.Join(dir, ScalerFile)))
	require.NoError(t, gb.Save(filepath.Join(dir, GradientBoostingFile)))
	require.NoError(t, lr.Save(filepath.Join(dir, LogisticRegressionFile)))
}

func TestStoreEmptyUntilLoaded(t *testing.T) {
	store := NewStore()
	assert.False(t, store.Loaded())

	_, err := store.Bundle()
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestStoreLoadDirRequiresAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := NewStore()

	// Empty dir: nothing to load.
	assert.Error(t, store.LoadDir(dir))

	// Scaler alone is not enough.
	scaler, _, _, _, _ := fitSmallModels(t)
	require.NoError(t, scaler.Save(filepath.Join(dir, ScalerFile)))
	assert.Error(t, store.LoadDir(dir))
	assert.False(t, store.Loaded())
}

func TestStoreLoadAndPredict(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.LoadDir(dir))
	require.True(t, store.Loaded())

	bundle, err := store.Bundle()
	require.NoError(t, err)

	// A panel with abnormal values in every risk-sensitive field.
	highRisk := LabPanel{
		WBC:           Number(18),
		Glucose:       Number(200),
		Cholesterol:   Number(300),
		LDL:           Number(200),
		HDL:           Number(25),
		Triglycerides: Number(350),
		A1C:           Number(10.5),
	}
	pred, err := bundle.Predict(highRisk)
	require.NoError(t, err)
	assert.Equal(t, "high", pred.RiskLevel)
	assert.Equal(t, ModelGradientBoosting, pred.Model)
	assert.GreaterOrEqual(t, pred.RiskScore, 0)
	assert.LessOrEqual(t, pred.RiskScore, 85)
	assert.GreaterOrEqual(t, pred.Confidence, 0)
	assert.LessOrEqual(t, pred.Confidence, 100)

	sum := pred.Probabilities.Low + pred.Probabilities.Moderate + pred.Probabilities.High
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestStorePredictEnsemble(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.LoadDir(dir))
	bundle, err := store.Bundle()
	require.NoError(t, err)

	pred, err := bundle.PredictEnsemble(LabPanel{})
	require.NoError(t, err)
	assert.Equal(t, ModelEnsemble, pred.Model)

	sum := pred.Probabilities.Low + pred.Probabilities.Moderate + pred.Probabilities.High
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestStoreReloadSwapsAtomically(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.LoadDir(dir))
	first, err := store.Bundle()
	require.NoError(t, err)

	// A second load installs a distinct bundle value; the old one stays
	// usable for in-flight requests holding the pointer.
	require.NoError(t, store.LoadDir(dir))
	second, err := store.Bundle()
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	_, err = first.Predict(LabPanel{})
	assert.NoError(t, err)
}

func TestStoreGenerationCountsSuccessfulLoads(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	store := NewStore()
	assert.Equal(t, uint64(0), store.Generation())

	require.NoError(t, store.LoadDir(dir))
	assert.Equal(t, uint64(1), store.Generation())

	require.Error(t, store.LoadDir(t.TempDir()))
	assert.Equal(t, uint64(1), store.Generation(), "failed load must not advance the generation")

	require.NoError(t, store.LoadDir(dir))
	assert.Equal(t, uint64(2), store.Generation())
}
