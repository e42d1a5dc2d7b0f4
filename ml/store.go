package ml

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Artifact file names inside the model directory, written by the training
// command and consumed read-only here.
const (
	ScalerFile             = "scaler.json"
	GradientBoostingFile   = "gradient_boosting.json"
	LogisticRegressionFile = "logistic_regression.json"
	ModelInfoFile          = "model_info.txt"
)

// Model identifiers reported in prediction responses.
const (
	ModelGradientBoosting = "gradient_boosting"
	ModelEnsemble         = "ensemble"
)

// Probabilities is the per-class probability mass in response shape.
type Probabilities struct {
	Low      float64 `json:"low"`
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
}

// Prediction is the outcome of one scoring operation.
type Prediction struct {
	RiskLevel     string        `json:"riskLevel"`
	RiskScore     int           `json:"riskScore"`
	Confidence    int           `json:"confidence"`
	Model         string        `json:"model"`
	Probabilities Probabilities `json:"probabilities"`
}

// Bundle is one immutable set of fitted artifacts. It is never mutated after
// construction; concurrent scoring operations share it without locking.
type Bundle struct {
	Scaler             *StandardScaler
	GradientBoosting   Classifier
	LogisticRegression Classifier
}

// LoadBundle reads the three artifacts from dir and assembles a bundle.
// Any missing or undeserializable artifact fails the whole load.
func LoadBundle(dir string) (*Bundle, error) {
	scaler := &StandardScaler{}
	if err := scaler.Load(filepath.Join(dir, ScalerFile)); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	gb, err := LoadClassifier(KindGradientBoosting, filepath.Join(dir, GradientBoostingFile))
	if err != nil {
		return nil, fmt.Errorf("load gradient boosting model: %w", err)
	}
	lr, err := LoadClassifier(KindLogisticRegression, filepath.Join(dir, LogisticRegressionFile))
	if err != nil {
		return nil, fmt.Errorf("load logistic regression model: %w", err)
	}
	return &Bundle{Scaler: scaler, GradientBoosting: gb, LogisticRegression: lr}, nil
}

// Predict scores a panel with the gradient boosting model alone.
func (b *Bundle) Predict(panel LabPanel) (Prediction, error) {
	scaled, err := b.Scaler.Transform(panel.Vector())
	if err != nil {
		return Prediction{}, fmt.Errorf("scale features: %w", err)
	}
	probs, err := b.GradientBoosting.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("gradient boosting predict: %w", err)
	}
	return buildPrediction(probs, ModelGradientBoosting), nil
}

// PredictEnsemble scores a panel with both models and averages their
// distributions.
func (b *Bundle) PredictEnsemble(panel LabPanel) (Prediction, error) {
	scaled, err := b.Scaler.Transform(panel.Vector())
	if err != nil {
		return Prediction{}, fmt.Errorf("scale features: %w", err)
	}
	gbProbs, err := b.GradientBoosting.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("gradient boosting predict: %w", err)
	}
	lrProbs, err := b.LogisticRegression.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("logistic regression predict: %w", err)
	}
	combined, err := Combine(gbProbs, lrProbs)
	if err != nil {
		return Prediction{}, err
	}
	return buildPrediction(combined, ModelEnsemble), nil
}

func buildPrediction(probs []float64, model string) Prediction {
	label := ArgMax(probs)
	return Prediction{
		RiskLevel:  RiskLevelName(label),
		RiskScore:  RiskScore(probs),
		Confidence: Confidence(probs, label),
		Model:      model,
		Probabilities: Probabilities{
			Low:      probs[RiskLow],
			Moderate: probs[RiskModerate],
			High:     probs[RiskHigh],
		},
	}
}

// Store is the process-wide holder of the current bundle. Reads are lock-free;
// a reload builds a complete new bundle and swaps the pointer in one step, so
// no in-flight request ever observes a half-updated bundle.
type Store struct {
	bundle     atomic.Pointer[Bundle]
	generation atomic.Uint64
}

func NewStore() *Store {
	return &Store{}
}

// LoadDir loads all artifacts from dir and atomically installs them.
// On failure the previously installed bundle, if any, stays active.
func (s *Store) LoadDir(dir string) error {
	bundle, err := LoadBundle(dir)
	if err != nil {
		return err
	}
	s.bundle.Store(bundle)
	s.generation.Add(1)
	return nil
}

// Generation counts successful loads. Anything derived from bundle output
// and held across requests, like a response cache, must key on it so a
// reload invalidates results computed by the previous bundle.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// Bundle returns the active bundle, or ErrModelNotLoaded before the first
// successful load.
func (s *Store) Bundle() (*Bundle, error) {
	bundle := s.bundle.Load()
	if bundle == nil {
		return nil, ErrModelNotLoaded
	}
	return bundle, nil
}

// Loaded reports whether scaler and both classifiers are available.
func (s *Store) Loaded() bool {
	return s.bundle.Load() != nil
}

// Watch reloads the store whenever artifacts in dir are rewritten. Events are
// debounced so a multi-file artifact refresh triggers a single reload.
func (s *Store) Watch(ctx context.Context, dir string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isArtifact(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(500 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("model watcher error", zap.Error(err))
		case <-debounce.C:
			if err := s.LoadDir(dir); err != nil {
				logger.Warn("model reload failed, keeping previous bundle", zap.Error(err))
				continue
			}
			logger.Info("model bundle reloaded", zap.String("dir", dir))
		}
	}
}

func isArtifact(path string) bool {
	switch filepath.Base(path) {
	case ScalerFile, GradientBoostingFile, LogisticRegressionFile:
		return true
	}
	return false
}
