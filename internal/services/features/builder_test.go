package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"SonaCast/internal/domain/models"
)

func mkSeries(prices []float64) models.Series {
	s := make(models.Series, len(prices))
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		s[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return s
}

func linearPrices(n int, base, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + step*float64(i)
	}
	return out
}

func TestBuildTooShort(t *testing.T) {
	_, err := Build(mkSeries(linearPrices(29, 100, 1)))
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestBuildRowCountAndShape(t *testing.T) {
	n := 60
	rows, err := Build(mkSeries(linearPrices(n, 100, 1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != n-Offset {
		t.Fatalf("row count %d, want %d", len(rows), n-Offset)
	}
	for i, r := range rows {
		if len(r) != NumFeatures {
			t.Fatalf("row %d has %d features", i, len(r))
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d col %d not finite: %v", i, j, v)
			}
		}
	}
}

func TestBuildConstantSeries(t *testing.T) {
	rows, err := Build(mkSeries(linearPrices(40, 500, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := rows[len(rows)-1]
	if r[IdxClose] != 500 || r[IdxMA7] != 500 || r[IdxMA30] != 500 {
		t.Fatalf("flat series means wrong: %v", r)
	}
	if r[IdxVol7] != 0 || r[IdxVol14] != 0 || r[IdxBBStd] != 0 {
		t.Fatalf("flat series should have zero volatility: %v", r)
	}
	if r[IdxReturns1] != 0 || r[IdxReturns7] != 0 {
		t.Fatalf("flat series should have zero returns: %v", r)
	}
	if r[IdxBBUpper] != 500 || r[IdxBBLower] != 500 {
		t.Fatalf("flat bands should collapse onto the middle: %v", r)
	}
}

func TestBuildRisingSeriesRSIClamps(t *testing.T) {
	rows, err := Build(mkSeries(linearPrices(45, 100, 2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range rows {
		// every step gains, so average loss is zero
		if r[IdxRSI] != 100 {
			t.Fatalf("row %d rsi %v, want 100", i, r[IdxRSI])
		}
	}
}

func TestBuildFallingSeriesRSIZero(t *testing.T) {
	rows, err := Build(mkSeries(linearPrices(45, 1000, -2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := rows[len(rows)-1]
	if math.Abs(r[IdxRSI]) > 1e-9 {
		t.Fatalf("rsi %v, want 0 for a strictly falling series", r[IdxRSI])
	}
}

func TestBuildKnownWindows(t *testing.T) {
	// ramp 1..40: MA7 at the last step is the mean of 34..40 = 37
	prices := linearPrices(40, 1, 1)
	rows, err := Build(mkSeries(prices))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := rows[len(rows)-1]
	if math.Abs(r[IdxMA7]-37) > 1e-9 {
		t.Fatalf("ma7 %v, want 37", r[IdxMA7])
	}
	if math.Abs(r[IdxMA30]-25.5) > 1e-9 {
		t.Fatalf("ma30 %v, want 25.5", r[IdxMA30])
	}
	// returns over 7 steps from 33 to 40
	if math.Abs(r[IdxReturns7]-(40.0-33.0)/33.0) > 1e-9 {
		t.Fatalf("returns7 %v", r[IdxReturns7])
	}
	// unit-step ramp has unit sample std in every window
	if math.Abs(r[IdxVol7]-rampStd(7)) > 1e-9 {
		t.Fatalf("vol7 %v want %v", r[IdxVol7], rampStd(7))
	}
	if math.Abs(r[IdxBBUpper]-(r[IdxBBMiddle]+2*r[IdxBBStd])) > 1e-9 {
		t.Fatalf("bollinger upper inconsistent")
	}
	if math.Abs(r[IdxBBLower]-(r[IdxBBMiddle]-2*r[IdxBBStd])) > 1e-9 {
		t.Fatalf("bollinger lower inconsistent")
	}
}

// rampStd is the sample std of w consecutive integers.
func rampStd(w int) float64 {
	mean := float64(w+1) / 2
	ss := 0.0
	for i := 1; i <= w; i++ {
		d := float64(i) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(w-1))
}
