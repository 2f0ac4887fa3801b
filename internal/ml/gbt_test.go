package ml

import (
	"math"
	"math/rand"
	"testing"
)

func testParams() GBTParams {
	return GBTParams{Trees: 80, MaxDepth: 4, LearningRate: 0.1, Subsample: 0.8, ColSample: 0.8, Seed: 42}
}

func linearData(n int) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(1))
	rows := make([][]float64, n)
	targets := make([]float64, n)
	for i := range rows {
		x0 := rng.Float64() * 10
		x1 := rng.Float64() * 5
		rows[i] = []float64{x0, x1}
		targets[i] = 3*x0 + 2*x1 + 1
	}
	return rows, targets
}

func TestTrainGBTFitsInRange(t *testing.T) {
	rows, targets := linearData(400)
	m, err := TrainGBT(rows, targets, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mean := 0.0
	for _, y := range targets {
		mean += y
	}
	mean /= float64(len(targets))

	var mse, baseMSE float64
	for i, r := range rows {
		d := m.Predict(r) - targets[i]
		mse += d * d
		b := mean - targets[i]
		baseMSE += b * b
	}
	mse /= float64(len(rows))
	baseMSE /= float64(len(rows))
	if mse >= baseMSE/10 {
		t.Fatalf("ensemble barely better than the mean: mse=%v base=%v", mse, baseMSE)
	}
}

func TestTrainGBTDeterministic(t *testing.T) {
	rows, targets := linearData(200)
	m1, err := TrainGBT(rows, targets, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, err := TrainGBT(rows, targets, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	probe := []float64{5, 2.5}
	if m1.Predict(probe) != m2.Predict(probe) {
		t.Fatalf("same seed produced different models")
	}

	p3 := testParams()
	p3.Seed = 7
	m3, err := TrainGBT(rows, targets, p3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m1.Predict(probe) == m3.Predict(probe) {
		t.Fatalf("different seeds should subsample differently")
	}
}

func TestTrainGBTConstantTarget(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}, {4}}
	targets := []float64{5, 5, 5, 5}
	m, err := TrainGBT(rows, targets, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Predict([]float64{2.5})-5) > 1e-9 {
		t.Fatalf("constant target should predict the constant, got %v", m.Predict([]float64{2.5}))
	}
}

func TestTrainGBTValidation(t *testing.T) {
	if _, err := TrainGBT(nil, nil, testParams()); err == nil {
		t.Fatalf("expected error on empty rows")
	}
	if _, err := TrainGBT([][]float64{{1}}, []float64{1, 2}, testParams()); err == nil {
		t.Fatalf("expected error on length mismatch")
	}
	bad := testParams()
	bad.Trees = 0
	if _, err := TrainGBT([][]float64{{1}}, []float64{1}, bad); err == nil {
		t.Fatalf("expected error on bad params")
	}
}
