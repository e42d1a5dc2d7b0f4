package ml

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerFitTransform(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{3, 10},
	}
	scaler := &StandardScaler{}
	require.NoError(t, scaler.Fit(rows))

	assert.InDelta(t, 2.0, scaler.Mean[0], 1e-9)
	assert.InDelta(t, 1.0, scaler.Scale[0], 1e-9)
	// Zero-variance column maps to scale 1 so transform stays defined.
	assert.Equal(t, 1.0, scaler.Scale[1])

	scaled, err := scaler.Transform([]float64{3, 12})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scaled[0], 1e-9)
	assert.InDelta(t, 2.0, scaled[1], 1e-9)
}

func TestScalerRejectsBadInput(t *testing.T) {
	scaler := &StandardScaler{}
	assert.Error(t, scaler.Fit(nil))

	_, err := scaler.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, scaler.Fit([][]float64{{1, 2}, {3, 4}}))
	_, err = scaler.Transform([]float64{1})
	assert.Error(t, err)
}

func TestScalerSaveLoadRoundTrip(t *testing.T) {
	rows := GenerateSeeded(50, 7)
	features, _ := SplitRows(rows)

	scaler := &StandardScaler{}
	require.NoError(t, scaler.Fit(features))

	path := filepath.Join(t.TempDir(), ScalerFile)
	require.NoError(t, scaler.Save(path))

	loaded := &StandardScaler{}
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, scaler.Mean, loaded.Mean)
	assert.Equal(t, scaler.Scale, loaded.Scale)
}
