package usecase

import (
	"context"
	"time"

	"SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	"SonaCast/internal/services/features"
	"SonaCast/internal/services/locale"
	"SonaCast/internal/services/modelbank"
	"SonaCast/internal/services/pricing"
)

// ForecastWindowDays is the history window fed to the feature builder when
// predicting; training uses its own, longer window.
const ForecastWindowDays = 90

// Forecaster produces the 7-day per-gram outlook. Days 1..3 come from
// dedicated model heads, days 4..7 extrapolate the day-3 head linearly.
// Purity scales prices only after prediction; the heads see pure-metal
// prices exclusively.
type Forecaster struct {
	source modelbank.BaseSource
	bank   *modelbank.Bank
	window int
	now    func() time.Time
}

func NewForecaster(source modelbank.BaseSource, bank *modelbank.Bank) *Forecaster {
	return &Forecaster{source: source, bank: bank, window: ForecastWindowDays, now: time.Now}
}

// Forecast computes the purity-adjusted per-gram outlook for a metal.
func (f *Forecaster) Forecast(ctx context.Context, metal models.Metal, purity models.Purity) (*models.Forecast, error) {
	factor, err := metal.PurityFactor(purity)
	if err != nil {
		return nil, err
	}

	base, err := f.source.BaseSeries(ctx, metal, f.window)
	if err != nil {
		return nil, err
	}
	rows, err := features.Build(base)
	if err != nil {
		return nil, err
	}
	latest := rows[len(rows)-1]

	current24K := base[len(base)-1].Price
	current := current24K * factor

	days := make([]models.ForecastDay, 0, 7)
	for day := 1; day <= 3; day++ {
		head, err := f.bank.GetOrTrain(ctx, metal, horizonFor(day))
		if err != nil {
			return nil, err
		}
		predicted := pricing.Round2(head.Predict(latest) * factor)
		days = append(days, models.ForecastDay{
			Day:        day,
			Price:      predicted,
			Trend:      pricing.Round2((predicted - current) / current * 100),
			Confidence: float64(95 - day*5),
		})
	}

	// extrapolate days 4..7 from the day-3 head at the average daily step
	day3 := days[2].Price
	step := (day3 - current) / 3
	for day := 4; day <= 7; day++ {
		predicted := pricing.Round2(day3 + step*float64(day-3))
		confidence := float64(85 - day*5)
		if confidence < 50 {
			confidence = 50
		}
		days = append(days, models.ForecastDay{
			Day:        day,
			Price:      predicted,
			Trend:      pricing.Round2((predicted - current) / current * 100),
			Confidence: confidence,
		})
	}

	return &models.Forecast{
		Metal:        metal,
		Purity:       purity,
		CurrentPrice: pricing.Round2(current),
		Days:         days,
		GeneratedAt:  f.now().UTC(),
	}, nil
}

// Localized runs the full pipeline: validate the location, forecast per
// gram, then scale to the unit weight with the city spread.
func (f *Forecaster) Localized(ctx context.Context, metal models.Metal, purity models.Purity, state, city string, unit int) (*models.LocalizedForecast, error) {
	spread, err := locale.Spread(state, city)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateUnit(metal, unit); err != nil {
		return nil, err
	}
	fc, err := f.Forecast(ctx, metal, purity)
	if err != nil {
		return nil, err
	}
	return pricing.LocalizeForecast(fc, state, city, unit, spread)
}

func horizonFor(day int) drepo.Horizon { return drepo.Horizon(day) }
