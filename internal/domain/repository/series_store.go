package repository

import (
	"context"

	"SonaCast/internal/domain/models"
)

// SeriesStore provides read access to daily closing prices aggregated from
// the live tick pipeline. Closes are in USD per troy ounce, oldest first.
type SeriesStore interface {
	DailyCloses(ctx context.Context, symbol string, days int) (models.Series, error)
}
