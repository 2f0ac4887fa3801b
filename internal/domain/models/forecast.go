package models

import "time"

// ForecastDay is one step of the 7-day outlook, per gram at the selected
// purity. Trend is the percent change versus the current price.
type ForecastDay struct {
	Day        int
	Price      float64
	Trend      float64
	Confidence float64
}

// Forecast is a purity-adjusted per-gram outlook before localization.
type Forecast struct {
	Metal        Metal
	Purity       Purity
	CurrentPrice float64
	Days         []ForecastDay
	GeneratedAt  time.Time
}

// LocalizedDay carries one outlook step scaled to the selected unit weight
// with the city spread applied. PricePerGram stays spread-free so callers
// can compare cities against the same base.
type LocalizedDay struct {
	Day          int
	Price        float64
	PricePerGram float64
	Trend        float64
	Confidence   float64
}

// LocalizedForecast is the full outlook for a metal, purity, unit and city.
type LocalizedForecast struct {
	Metal               Metal
	PurityLabel         string
	Unit                int
	UnitLabel           string
	State               string
	City                string
	Spread              float64
	CurrentPrice        float64
	CurrentPricePerGram float64
	Forecast            []LocalizedDay
	WeekAverage         float64
	WeekTrend           float64
	GeneratedAt         time.Time
}
