package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"

	"mediscan/ml"
)

func main() {
	samples := flag.Int("samples", 2000, "number of synthetic training rows")
	seed := flag.Uint64("seed", 42, "PRNG seed for data generation and the split")
	testRatio := flag.Float64("test_ratio", 0.2, "fraction of rows held out for evaluation")
	outDir := flag.String("out", "./models", "artifact output directory")
	flag.Parse()

	if *samples <= 0 {
		log.Fatal("samples must be positive")
	}

	log.Printf("generating %d synthetic rows (seed=%d)", *samples, *seed)
	rows := ml.Generate(*samples, rand.NewSource(*seed))

	trainRows, testRows := splitRows(rows, *testRatio, *seed)
	trainX, trainY := ml.SplitRows(trainRows)
	testX, testY := ml.SplitRows(testRows)
	log.Printf("training samples: %d, test samples: %d", len(trainRows), len(testRows))

	scaler := &ml.StandardScaler{}
	if err := scaler.Fit(trainX); err != nil {
		log.Fatalf("failed to fit scaler: %v", err)
	}
	trainScaled, err := scaler.TransformAll(trainX)
	if err != nil {
		log.Fatalf("failed to scale training data: %v", err)
	}
	testScaled, err := scaler.TransformAll(testX)
	if err != nil {
		log.Fatalf("failed to scale test data: %v", err)
	}

	log.Print("training gradient boosting model")
	gb := ml.NewGradientBoosting()
	if err := gb.Fit(trainScaled, trainY); err != nil {
		log.Fatalf("failed to train gradient boosting model: %v", err)
	}
	gbAccuracy := accuracy(gb, testScaled, testY)
	log.Printf("gradient boosting accuracy: %.3f", gbAccuracy)

	log.Print("training logistic regression model")
	lr := ml.NewLogisticRegression()
	if err := lr.Fit(trainScaled, trainY); err != nil {
		log.Fatalf("failed to train logistic regression model: %v", err)
	}
	lrAccuracy := accuracy(lr, testScaled, testY)
	log.Printf("logistic regression accuracy: %.3f", lrAccuracy)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}
	if err := scaler.Save(filepath.Join(*outDir, ml.ScalerFile)); err != nil {
		log.Fatalf("failed to save scaler: %v", err)
	}
	if err := gb.Save(filepath.Join(*outDir, ml.GradientBoostingFile)); err != nil {
		log.Fatalf("failed to save gradient boosting model: %v", err)
	}
	if err := lr.Save(filepath.Join(*outDir, ml.LogisticRegressionFile)); err != nil {
		log.Fatalf("failed to save logistic regression model: %v", err)
	}
	if err := writeModelInfo(filepath.Join(*outDir, ml.ModelInfoFile), gbAccuracy, lrAccuracy); err != nil {
		log.Fatalf("failed to write model info: %v", err)
	}

	fmt.Printf("artifacts saved to %s\n", *outDir)
}

// splitRows shuffles with a seeded permutation so the split is reproducible
// alongside the generated data.
func splitRows(rows []ml.TrainingRow, testRatio float64, seed uint64) (train, test []ml.TrainingRow) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(rows))

	split := int(float64(len(rows)) * (1 - testRatio))
	for i, idx := range indices {
		if i < split {
			train = append(train, rows[idx])
		} else {
			test = append(test, rows[idx])
		}
	}
	return train, test
}

func accuracy(model ml.Classifier, features [][]float64, labels []int) float64 {
	if len(features) == 0 {
		return 0
	}
	correct := 0
	for i, f := range features {
		probs, err := model.PredictProba(f)
		if err != nil {
			continue
		}
		if ml.ArgMax(probs) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(features))
}

func writeModelInfo(path string, gbAccuracy, lrAccuracy float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "MEDiscan Health Risk Prediction Models")
	fmt.Fprintln(f, "==================================================")
	fmt.Fprintln(f)
	fmt.Fprintf(f, "Gradient Boosting Accuracy: %.3f\n", gbAccuracy)
	fmt.Fprintf(f, "Logistic Regression Accuracy: %.3f\n", lrAccuracy)
	fmt.Fprintln(f)
	fmt.Fprintln(f, "Features (12):")
	fmt.Fprintln(f, "  - WBC, RBC, Hemoglobin, Platelets")
	fmt.Fprintln(f, "  - Cholesterol, HDL, LDL, Triglycerides")
	fmt.Fprintln(f, "  - Glucose, A1C, pH, Protein")
	fmt.Fprintln(f)
	fmt.Fprintln(f, "Target Classes (3):")
	fmt.Fprintln(f, "  - 0: Low Risk")
	fmt.Fprintln(f, "  - 1: Moderate Risk")
	fmt.Fprintln(f, "  - 2: High Risk")
	return nil
}
