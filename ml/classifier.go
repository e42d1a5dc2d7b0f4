package ml

import (
	"errors"
	"fmt"
)

// NumClasses is the number of risk tiers.
const NumClasses = 3

// Risk tier ordinals. The ordinal is load-bearing: it indexes probability
// distributions and the score weight table.
const (
	RiskLow = iota
	RiskModerate
	RiskHigh
)

var riskLevelNames = [NumClasses]string{"low", "moderate", "high"}

// RiskLevelName maps a class ordinal to its wire name.
func RiskLevelName(label int) string {
	if label < 0 || label >= NumClasses {
		return "unknown"
	}
	return riskLevelNames[label]
}

var (
	// ErrNotFitted is returned when a model is queried before training or loading.
	ErrNotFitted = errors.New("model not fitted")
	// ErrModelNotLoaded is returned when the store holds no bundle.
	ErrModelNotLoaded = errors.New("models not loaded")
)

// Classifier maps a scaled feature vector to a probability distribution over
// the three risk classes. Implementations must return NumClasses non-negative
// entries summing to 1.
type Classifier interface {
	Fit(features [][]float64, labels []int) error
	PredictProba(features []float64) ([]float64, error)
	Save(path string) error
	Load(path string) error
}

// Classifier kinds understood by LoadClassifier.
const (
	KindGradientBoosting   = "gradient_boosting"
	KindLogisticRegression = "logistic_regression"
)

// LoadClassifier reads a previously fitted model artifact of the given kind.
func LoadClassifier(kind, path string) (Classifier, error) {
	var model Classifier
	switch kind {
	case KindGradientBoosting:
		model = &GradientBoosting{}
	case KindLogisticRegression:
		model = &LogisticRegression{}
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", kind)
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}

func validateTrainingSet(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	for _, label := range labels {
		if label < 0 || label >= NumClasses {
			return fmt.Errorf("label %d out of range", label)
		}
	}
	return nil
}
