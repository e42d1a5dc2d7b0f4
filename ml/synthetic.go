package ml

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Column indexes into the canonical feature order.
const (
	idxWBC = iota
	idxRBC
	idxHemoglobin
	idxPlatelets
	idxCholesterol
	idxHDL
	idxLDL
	idxTriglycerides
	idxGlucose
	idxA1C
	idxPH
	idxProtein
)

// TrainingRow is one labeled synthetic example. Rows are consumed directly
// by the training pipeline and never persisted.
type TrainingRow struct {
	Features []float64
	Label    int
}

type valueRange struct {
	Min, Max float64
}

// labelPrior is the 50/30/20 low/moderate/high class prior. Trained-model
// behavior is only comparable across builds if this stays exact.
var labelPrior = []float64{0.5, 0.3, 0.2}

// riskSensitiveRanges holds the per-label uniform ranges, indexed by class
// ordinal, for the seven features that carry the risk signal. The bounds
// follow standard clinical reference bands (e.g. glucose: normal under 100,
// prediabetic 100-125, diabetic 126 and up).
var riskSensitiveRanges = [NumClasses]struct {
	WBC, Glucose, Cholesterol, LDL, HDL, Triglycerides, A1C valueRange
}{
	RiskLow: {
		WBC:           valueRange{4.5, 11.0},
		Glucose:       valueRange{70, 99},
		Cholesterol:   valueRange{125, 199},
		LDL:           valueRange{50, 129},
		HDL:           valueRange{50, 90},
		Triglycerides: valueRange{50, 149},
		A1C:           valueRange{4.0, 5.6},
	},
	RiskModerate: {
		WBC:           valueRange{4.0, 12.0},
		Glucose:       valueRange{100, 125},
		Cholesterol:   valueRange{200, 239},
		LDL:           valueRange{130, 159},
		HDL:           valueRange{40, 50},
		Triglycerides: valueRange{150, 199},
		A1C:           valueRange{5.7, 6.4},
	},
	RiskHigh: {
		WBC:           valueRange{3.5, 20.0},
		Glucose:       valueRange{126, 250},
		Cholesterol:   valueRange{240, 320},
		LDL:           valueRange{160, 220},
		HDL:           valueRange{20, 40},
		Triglycerides: valueRange{200, 400},
		A1C:           valueRange{6.5, 12.0},
	},
}

// Label-independent ranges for the features outside the risk signal.
var (
	rbcRange        = valueRange{4.2, 5.9}
	hemoglobinRange = valueRange{12.0, 17.5}
	plateletsRange  = valueRange{150, 400}
	phRange         = valueRange{4.5, 8.0}
	proteinPositive = 0.2
)

// Generate produces n labeled rows. A class is drawn from the fixed prior,
// the risk-sensitive features from that class's ranges, and the remaining
// features from label-free distributions. Output is fully determined by the
// source's seed.
func Generate(n int, src rand.Source) []TrainingRow {
	labelDist := distuv.NewCategorical(labelPrior, src)
	protein := distuv.Bernoulli{P: proteinPositive, Src: src}
	uniform := func(r valueRange) float64 {
		return distuv.Uniform{Min: r.Min, Max: r.Max, Src: src}.Rand()
	}

	rows := make([]TrainingRow, 0, n)
	for i := 0; i < n; i++ {
		label := int(labelDist.Rand())
		ranges := riskSensitiveRanges[label]

		f := make([]float64, NumFeatures)
		f[idxWBC] = uniform(ranges.WBC)
		f[idxGlucose] = uniform(ranges.Glucose)
		f[idxCholesterol] = uniform(ranges.Cholesterol)
		f[idxLDL] = uniform(ranges.LDL)
		f[idxHDL] = uniform(ranges.HDL)
		f[idxTriglycerides] = uniform(ranges.Triglycerides)
		f[idxA1C] = uniform(ranges.A1C)

		f[idxRBC] = uniform(rbcRange)
		f[idxHemoglobin] = uniform(hemoglobinRange)
		f[idxPlatelets] = uniform(plateletsRange)
		f[idxPH] = uniform(phRange)
		f[idxProtein] = protein.Rand()

		rows = append(rows, TrainingRow{Features: f, Label: label})
	}
	return rows
}

// GenerateSeeded is Generate with a fresh source for the given seed.
func GenerateSeeded(n int, seed uint64) []TrainingRow {
	return Generate(n, rand.NewSource(seed))
}

// SplitRows separates rows into feature matrix and label slice.
func SplitRows(rows []TrainingRow) ([][]float64, []int) {
	features := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		features[i] = row.Features
		labels[i] = row.Label
	}
	return features, labels
}
