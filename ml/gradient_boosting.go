package ml

import (
	"encoding/json"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// GradientBoosting is an additive ensemble of regression trees trained on the
// multinomial log-loss. Each boosting round fits one tree per class against
// the current residuals.
type GradientBoosting struct {
	Rounds       int     `json:"rounds"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	MinLeaf      int     `json:"min_leaf"`

	// BaseScore holds the log class priors the ensemble starts from.
	BaseScore []float64          `json:"base_score"`
	Trees     [][]regressionTree `json:"trees"`
}

// NewGradientBoosting returns a model with the production hyperparameters.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		Rounds:       100,
		LearningRate: 0.1,
		MaxDepth:     5,
		MinLeaf:      5,
	}
}

func (gb *GradientBoosting) Fit(features [][]float64, labels []int) error {
	if err := validateTrainingSet(features, labels); err != nil {
		return err
	}
	if gb.Rounds <= 0 {
		gb.Rounds = 100
	}
	if gb.LearningRate <= 0 {
		gb.LearningRate = 0.1
	}
	if gb.MaxDepth <= 0 {
		gb.MaxDepth = 5
	}
	if gb.MinLeaf <= 0 {
		gb.MinLeaf = 5
	}

	n := len(features)
	gb.BaseScore = logPriors(labels)
	gb.Trees = make([][]regressionTree, 0, gb.Rounds)

	// scores[i][k] is the current additive score of row i for class k.
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = append([]float64(nil), gb.BaseScore...)
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	probs := make([]float64, NumClasses)
	for round := 0; round < gb.Rounds; round++ {
		stage := make([]regressionTree, NumClasses)
		for k := 0; k < NumClasses; k++ {
			for i := 0; i < n; i++ {
				softmaxInto(scores[i], probs)
				target := 0.0
				if labels[i] == k {
					target = 1.0
				}
				grad[i] = target - probs[k]
				hess[i] = probs[k] * (1 - probs[k])
			}
			stage[k].fit(features, grad, hess, gb.MaxDepth, gb.MinLeaf)
			for i := 0; i < n; i++ {
				scores[i][k] += gb.shrinkage() * stage[k].predict(features[i])
			}
		}
		gb.Trees = append(gb.Trees, stage)
	}
	return nil
}

func (gb *GradientBoosting) PredictProba(features []float64) ([]float64, error) {
	if len(gb.Trees) == 0 || len(gb.BaseScore) != NumClasses {
		return nil, ErrNotFitted
	}
	scores := append([]float64(nil), gb.BaseScore...)
	for _, stage := range gb.Trees {
		for k := range stage {
			scores[k] += gb.shrinkage() * stage[k].predict(features)
		}
	}
	probs := make([]float64, NumClasses)
	softmaxInto(scores, probs)
	return probs, nil
}

func (gb *GradientBoosting) Save(path string) error {
	if len(gb.Trees) == 0 {
		return ErrNotFitted
	}
	payload, err := json.Marshal(gb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (gb *GradientBoosting) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded GradientBoosting
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Trees) == 0 || len(loaded.BaseScore) != NumClasses {
		return ErrNotFitted
	}
	*gb = loaded
	return nil
}

// shrinkage folds the multiclass correction factor (K-1)/K into the
// learning rate so training and prediction stay consistent.
func (gb *GradientBoosting) shrinkage() float64 {
	return gb.LearningRate * float64(NumClasses-1) / float64(NumClasses)
}

func logPriors(labels []int) []float64 {
	counts := make([]float64, NumClasses)
	for _, label := range labels {
		counts[label]++
	}
	total := float64(len(labels))
	priors := make([]float64, NumClasses)
	for k, c := range counts {
		if c == 0 {
			c = 1 // avoid log(0) for empty classes
		}
		priors[k] = math.Log(c / total)
	}
	return priors
}

// softmaxInto writes the softmax of scores into out, shifting by the max
// score for numerical stability.
func softmaxInto(scores, out []float64) {
	max := floats.Max(scores)
	for k, s := range scores {
		out[k] = math.Exp(s - max)
	}
	floats.Scale(1/floats.Sum(out), out)
}
