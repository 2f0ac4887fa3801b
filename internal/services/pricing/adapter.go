package pricing

import (
	"fmt"
	"math"

	"SonaCast/internal/domain/models"
)

// Localize scales a per-gram price to the selected unit weight and applies
// the city spread percentage.
func Localize(perGram float64, unitGrams int, spreadPct float64) float64 {
	return perGram * float64(unitGrams) * (1 + spreadPct/100)
}

// ValidateUnit rejects unit weights outside the metal's selectable set.
func ValidateUnit(m models.Metal, grams int) error {
	if !m.ValidUnit(grams) {
		return fmt.Errorf("%w: unit %dg not valid for %s", models.ErrInvalidParameter, grams, m)
	}
	return nil
}

// LocalizeForecast converts a purity-adjusted per-gram outlook into retail
// totals for the given unit weight and city spread. PricePerGram stays
// spread-free; weekAverage is the mean of the localized day prices and
// weekTrend the percent move of day 7 versus the localized current price.
func LocalizeForecast(f *models.Forecast, state, city string, unitGrams int, spreadPct float64) (*models.LocalizedForecast, error) {
	if err := ValidateUnit(f.Metal, unitGrams); err != nil {
		return nil, err
	}
	current := Round2(Localize(f.CurrentPrice, unitGrams, spreadPct))

	days := make([]models.LocalizedDay, 0, len(f.Days))
	sum := 0.0
	for _, d := range f.Days {
		price := Round2(Localize(d.Price, unitGrams, spreadPct))
		sum += price
		days = append(days, models.LocalizedDay{
			Day:          d.Day,
			Price:        price,
			PricePerGram: Round2(d.Price),
			Trend:        d.Trend,
			Confidence:   d.Confidence,
		})
	}

	lf := &models.LocalizedForecast{
		Metal:               f.Metal,
		PurityLabel:         f.Metal.PurityLabel(f.Purity),
		Unit:                unitGrams,
		UnitLabel:           models.UnitLabel(unitGrams),
		State:               state,
		City:                city,
		Spread:              spreadPct,
		CurrentPrice:        current,
		CurrentPricePerGram: Round2(f.CurrentPrice * (1 + spreadPct/100)),
		Forecast:            days,
		GeneratedAt:         f.GeneratedAt,
	}
	if len(days) > 0 && current != 0 {
		lf.WeekAverage = Round2(sum / float64(len(days)))
		lf.WeekTrend = Round2((days[len(days)-1].Price - current) / current * 100)
	}
	return lf, nil
}

// Round2 rounds to two decimals, the precision quoted prices carry.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
