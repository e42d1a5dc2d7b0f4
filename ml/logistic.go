package ml

import (
	"encoding/json"
	"os"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is a multinomial (softmax) classifier trained with batch
// gradient descent on scaled features.
type LogisticRegression struct {
	MaxIter      int     `json:"max_iter"`
	LearningRate float64 `json:"learning_rate"`

	// Weights[k] holds the coefficients for class k; Bias[k] the intercept.
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// NewLogisticRegression returns a model with the production hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{MaxIter: 1000, LearningRate: 0.1}
}

func (lr *LogisticRegression) Fit(features [][]float64, labels []int) error {
	if err := validateTrainingSet(features, labels); err != nil {
		return err
	}
	if lr.MaxIter <= 0 {
		lr.MaxIter = 1000
	}
	if lr.LearningRate <= 0 {
		lr.LearningRate = 0.1
	}

	n := len(features)
	width := len(features[0])
	lr.Weights = make([][]float64, NumClasses)
	for k := range lr.Weights {
		lr.Weights[k] = make([]float64, width)
	}
	lr.Bias = make([]float64, NumClasses)

	scores := make([]float64, NumClasses)
	probs := make([]float64, NumClasses)
	gradW := make([][]float64, NumClasses)
	for k := range gradW {
		gradW[k] = make([]float64, width)
	}
	gradB := make([]float64, NumClasses)

	for iter := 0; iter < lr.MaxIter; iter++ {
		for k := 0; k < NumClasses; k++ {
			for j := range gradW[k] {
				gradW[k][j] = 0
			}
			gradB[k] = 0
		}
		for i := 0; i < n; i++ {
			lr.scoresInto(features[i], scores)
			softmaxInto(scores, probs)
			for k := 0; k < NumClasses; k++ {
				indicator := 0.0
				if labels[i] == k {
					indicator = 1.0
				}
				err := probs[k] - indicator
				floats.AddScaled(gradW[k], err, features[i])
				gradB[k] += err
			}
		}
		step := lr.LearningRate / float64(n)
		for k := 0; k < NumClasses; k++ {
			floats.AddScaled(lr.Weights[k], -step, gradW[k])
			lr.Bias[k] -= step * gradB[k]
		}
	}
	return nil
}

func (lr *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	if len(lr.Weights) != NumClasses {
		return nil, ErrNotFitted
	}
	if len(features) != len(lr.Weights[0]) {
		return nil, ErrNotFitted
	}
	scores := make([]float64, NumClasses)
	lr.scoresInto(features, scores)
	probs := make([]float64, NumClasses)
	softmaxInto(scores, probs)
	return probs, nil
}

func (lr *LogisticRegression) scoresInto(features, scores []float64) {
	for k := 0; k < NumClasses; k++ {
		scores[k] = lr.Bias[k] + floats.Dot(lr.Weights[k], features)
	}
}

func (lr *LogisticRegression) Save(path string) error {
	if len(lr.Weights) != NumClasses {
		return ErrNotFitted
	}
	payload, err := json.Marshal(lr)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (lr *LogisticRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LogisticRegression
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Weights) != NumClasses || len(loaded.Bias) != NumClasses {
		return ErrNotFitted
	}
	*lr = loaded
	return nil
}
