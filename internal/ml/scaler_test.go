package ml

import (
	"math"
	"testing"
)

func TestFitScalerKnownValues(t *testing.T) {
	rows := [][]float64{{1, 10}, {3, 10}}
	s, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mean[0] != 2 || s.Mean[1] != 10 {
		t.Fatalf("mean %v", s.Mean)
	}
	if s.Scale[0] != 1 {
		t.Fatalf("scale[0] %v, want 1", s.Scale[0])
	}
	// constant column falls back to unit scale
	if s.Scale[1] != 1 {
		t.Fatalf("scale[1] %v, want 1", s.Scale[1])
	}
	got := s.Transform([]float64{3, 10})
	if got[0] != 1 || got[1] != 0 {
		t.Fatalf("transform %v", got)
	}
}

func TestScalerStandardizes(t *testing.T) {
	rows := [][]float64{{2, 100}, {4, 200}, {6, 300}, {8, 400}}
	s, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled := s.TransformAll(rows)
	for j := 0; j < 2; j++ {
		mean := 0.0
		for _, r := range scaled {
			mean += r[j]
		}
		mean /= float64(len(scaled))
		if math.Abs(mean) > 1e-12 {
			t.Fatalf("col %d mean %v, want 0", j, mean)
		}
		variance := 0.0
		for _, r := range scaled {
			variance += r[j] * r[j]
		}
		variance /= float64(len(scaled))
		if math.Abs(variance-1) > 1e-12 {
			t.Fatalf("col %d variance %v, want 1", j, variance)
		}
	}
}

func TestScalerDoesNotMutateInput(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	s, _ := FitScaler(rows)
	in := []float64{1, 2}
	_ = s.Transform(in)
	if in[0] != 1 || in[1] != 2 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestFitScalerEmpty(t *testing.T) {
	if _, err := FitScaler(nil); err == nil {
		t.Fatalf("expected error on empty input")
	}
}
