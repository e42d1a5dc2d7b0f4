package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes feature vectors to zero mean and unit scale
// using statistics fitted once on a training corpus. Mean and Scale are
// aligned 1:1 with the canonical feature order.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Fit computes per-column mean and standard deviation over the given rows.
// Zero-variance columns get scale 1 so Transform never divides by zero.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.New("rows is empty")
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(row), width)
		}
	}

	s.Mean = make([]float64, width)
	s.Scale = make([]float64, width)
	column := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i := range rows {
			column[i] = rows[i][j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return nil
}

// Transform returns (value - mean) / scale per column, preserving order.
// The caller is responsible for provenance: parameters fitted on a different
// corpus or column order produce meaningless output without any error.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("got %d features, scaler fitted on %d", len(features), len(s.Mean))
	}
	scaled := make([]float64, len(features))
	for i, v := range features {
		scaled[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return scaled, nil
}

// TransformAll scales every row with the same fitted parameters.
func (s *StandardScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		out, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		scaled[i] = out
	}
	return scaled, nil
}

func (s *StandardScaler) Save(path string) error {
	if len(s.Mean) == 0 {
		return ErrNotFitted
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (s *StandardScaler) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, s); err != nil {
		return err
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return errors.New("scaler artifact is malformed")
	}
	return nil
}
