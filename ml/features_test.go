package ml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueMissingUsesDefault(t *testing.T) {
	for _, def := range []float64{0, 7.5, 250} {
		assert.Equal(t, def, ParseValue(Absent(), def))
	}
}

func TestParseValueNumberPassesThrough(t *testing.T) {
	// No clamping, even for implausible values.
	assert.Equal(t, 110.0, ParseValue(Number(110), 95))
	assert.Equal(t, -3.0, ParseValue(Number(-3), 95))
}

func TestParseValueNumericString(t *testing.T) {
	assert.Equal(t, 110.0, ParseValue(Text("110"), 95))
	assert.Equal(t, 5.4, ParseValue(Text(" 5.4 "), 0))
}

func TestParseValueCategorical(t *testing.T) {
	for _, s := range []string{"positive", "Positive", "POSITIVE", "trace", "Trace"} {
		assert.Equal(t, 1.0, ParseValue(Text(s), 42), "input %q", s)
	}
	// Full-width characters normalize before matching.
	assert.Equal(t, 1.0, ParseValue(Text("Ｐｏｓｉｔｉｖｅ"), 42))
}

func TestParseValueGarbageFallsBack(t *testing.T) {
	for _, s := range []string{"abc", "negative", "", "12,5"} {
		assert.Equal(t, 3.3, ParseValue(Text(s), 3.3), "input %q", s)
	}
}

func TestLabValueUnmarshalNeverFails(t *testing.T) {
	cases := []string{`1.5`, `"110"`, `"positive"`, `null`, `true`, `[1,2]`, `{"a":1}`}
	for _, raw := range cases {
		var v LabValue
		require.NoError(t, json.Unmarshal([]byte(raw), &v), "input %s", raw)
	}
}

func TestPanelPartialInput(t *testing.T) {
	var panel LabPanel
	require.NoError(t, json.Unmarshal([]byte(`{"glucose": "110", "cholesterol": 220}`), &panel))

	vec := panel.Vector()
	require.Len(t, vec, NumFeatures)
	assert.Equal(t, DefaultWBC, vec[idxWBC])
	assert.Equal(t, 110.0, vec[idxGlucose])
	assert.Equal(t, 220.0, vec[idxCholesterol])
	assert.Equal(t, DefaultA1C, vec[idxA1C])
	assert.Equal(t, DefaultProtein, vec[idxProtein])
}

func TestPanelEmptyObjectResolvesToDefaults(t *testing.T) {
	var panel LabPanel
	require.NoError(t, json.Unmarshal([]byte(`{}`), &panel))

	want := []float64{
		DefaultWBC, DefaultRBC, DefaultHemoglobin, DefaultPlatelets,
		DefaultCholesterol, DefaultHDL, DefaultLDL, DefaultTriglycerides,
		DefaultGlucose, DefaultA1C, DefaultPH, DefaultProtein,
	}
	assert.Equal(t, want, panel.Vector())
}

func TestFeatureNamesOrder(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, NumFeatures)
	assert.Equal(t, "wbc", names[idxWBC])
	assert.Equal(t, "glucose", names[idxGlucose])
	assert.Equal(t, "protein", names[idxProtein])
}
