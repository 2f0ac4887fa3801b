// Package ml implements the small learning stack used for price heads:
// feature standardization and gradient-boosted regression trees. Fields are
// exported for gob round-trips through the model store.
package ml

import (
	"fmt"
	"math"
)

// StandardScaler centers columns to zero mean and scales them to unit
// variance. Constant columns are centered only.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes per-column mean and population standard deviation.
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("scaler: no rows to fit")
	}
	cols := len(rows[0])
	mean := make([]float64, cols)
	scale := make([]float64, cols)
	for _, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("scaler: ragged row, %d != %d", len(r), cols)
		}
		for j, v := range r {
			mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range mean {
		mean[j] /= n
	}
	for _, r := range rows {
		for j, v := range r {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// Transform scales one row, leaving the input untouched.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll scales every row.
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.Transform(r)
	}
	return out
}
