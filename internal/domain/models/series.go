package models

import "time"

// PricePoint is one daily step of a price series.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Series is an ordered (oldest first) daily price series. Values are
// immutable once built; downstream stages never mutate points in place.
type Series []PricePoint

// Prices extracts the price column.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Last returns the most recent point, or false on an empty series.
func (s Series) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// Tick is a single live spot quote, in USD per troy ounce.
type Tick struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}
