package pricing

import (
	"fmt"

	"SonaCast/internal/domain/models"
)

// GramsPerTroyOunce converts ounce-quoted spot prices to gram prices.
const GramsPerTroyOunce = 31.1035

// FallbackExchangeRate is the USD/INR rate used when the live rate cannot
// be fetched.
const FallbackExchangeRate = 83.0

// Normalize converts a USD-per-troy-ounce series into an INR-per-gram retail
// base series: price * rate / 31.1035 * markup, one output point per input
// point, order and dates preserved. Purity is not an input here; it is
// applied only after prediction.
func Normalize(raw models.Series, rate, markup float64) (models.Series, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty source series", models.ErrDataUnavailable)
	}
	out := make(models.Series, len(raw))
	for i, p := range raw {
		out[i] = models.PricePoint{
			Date:  p.Date,
			Price: p.Price * rate / GramsPerTroyOunce * markup,
		}
	}
	return out, nil
}
