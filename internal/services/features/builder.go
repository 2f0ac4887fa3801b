package features

import (
	"fmt"
	"math"

	"SonaCast/internal/domain/models"
)

// Feature column layout, fixed across training and prediction.
const (
	IdxClose = iota
	IdxMA7
	IdxMA14
	IdxMA30
	IdxVol7
	IdxVol14
	IdxReturns1
	IdxReturns7
	IdxRSI
	IdxBBMiddle
	IdxBBStd
	IdxBBUpper
	IdxBBLower

	NumFeatures = 13
)

// MinHistory is the shortest series that yields at least one feature row;
// the 30-day moving average is the longest rolling window.
const MinHistory = 30

// Offset is the number of leading input steps without a complete window.
// Output row j corresponds to input step j+Offset.
const Offset = MinHistory - 1

// Build computes the rolling indicator matrix for a daily base series.
// Rows whose windows reach before the start of the series are dropped.
// The result is a pure function of the input; the series is not mutated.
func Build(base models.Series) ([][]float64, error) {
	n := len(base)
	if n < MinHistory {
		return nil, fmt.Errorf("%w: %d steps, need %d", models.ErrInsufficientHistory, n, MinHistory)
	}
	close := base.Prices()

	ma7 := rollingMean(close, 7)
	ma14 := rollingMean(close, 14)
	ma30 := rollingMean(close, 30)
	vol7 := rollingStd(close, 7)
	vol14 := rollingStd(close, 14)
	bbStd := rollingStd(close, 20)
	bbMid := rollingMean(close, 20)
	rsi := rsi14(close)

	rows := make([][]float64, 0, n-Offset)
	for i := Offset; i < n; i++ {
		row := make([]float64, NumFeatures)
		row[IdxClose] = close[i]
		row[IdxMA7] = ma7[i]
		row[IdxMA14] = ma14[i]
		row[IdxMA30] = ma30[i]
		row[IdxVol7] = vol7[i]
		row[IdxVol14] = vol14[i]
		row[IdxReturns1] = pctChange(close, i, 1)
		row[IdxReturns7] = pctChange(close, i, 7)
		row[IdxRSI] = rsi[i]
		row[IdxBBMiddle] = bbMid[i]
		row[IdxBBStd] = bbStd[i]
		row[IdxBBUpper] = bbMid[i] + 2*bbStd[i]
		row[IdxBBLower] = bbMid[i] - 2*bbStd[i]
		rows = append(rows, row)
	}
	return rows, nil
}

// rollingMean fills index i with the mean of x[i-w+1..i]; leading entries
// without a full window stay NaN.
func rollingMean(x []float64, w int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}
	sum := 0.0
	for i, v := range x {
		sum += v
		if i >= w {
			sum -= x[i-w]
		}
		if i >= w-1 {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// rollingStd is the sample standard deviation over the trailing window.
func rollingStd(x []float64, w int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := w - 1; i < len(x); i++ {
		mean := 0.0
		for j := i - w + 1; j <= i; j++ {
			mean += x[j]
		}
		mean /= float64(w)
		ss := 0.0
		for j := i - w + 1; j <= i; j++ {
			d := x[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(w-1))
	}
	return out
}

func pctChange(x []float64, i, k int) float64 {
	prev := x[i-k]
	if prev == 0 {
		return 0
	}
	return (x[i] - prev) / prev
}

// rsi14 computes the 14-step relative strength index from rolling mean
// gains and losses. A window with zero average loss clamps to 100: prices
// that only rose read as maximally overbought rather than undefined.
func rsi14(x []float64) []float64 {
	const w = 14
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(x) < w+1 {
		return out
	}
	gains := make([]float64, len(x))
	losses := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	for i := w; i < len(x); i++ {
		avgGain := 0.0
		avgLoss := 0.0
		for j := i - w + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(w)
		avgLoss /= float64(w)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
