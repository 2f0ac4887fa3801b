package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	pkgcache "SonaCast/pkg/cache"
	xlogger "SonaCast/pkg/logger"
)

const rateCacheKey = "fx:usd_inr"

// Source turns raw ounce-quoted history into the normalized INR-per-gram
// base series the feature builder and trainer consume. Exchange-rate
// failures never fail a request; the fallback rate keeps quotes flowing.
type Source struct {
	provider drepo.HistoryProvider
	logger   *xlogger.Logger
	fallback float64
	rates    pkgcache.Service
	rateTTL  time.Duration
}

func NewSource(provider drepo.HistoryProvider, logger *xlogger.Logger) *Source {
	return &Source{
		provider: provider,
		logger:   logger,
		fallback: FallbackExchangeRate,
		rates:    pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(8)),
		rateTTL:  15 * time.Minute,
	}
}

// SetRateCache swaps the exchange-rate cache, e.g. for a shared layered cache.
func (s *Source) SetRateCache(c pkgcache.Service, ttl time.Duration) {
	s.rates = c
	if ttl > 0 {
		s.rateTTL = ttl
	}
}

// BaseSeries fetches, rates and normalizes a window of daily closes.
func (s *Source) BaseSeries(ctx context.Context, metal models.Metal, days int) (models.Series, error) {
	raw, err := s.provider.DailyCloses(ctx, metal, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %s closes: %v", models.ErrDataUnavailable, metal, err)
	}
	return Normalize(raw, s.Rate(ctx), metal.Markup())
}

// Rate returns the live USD/INR rate, or the fallback when the provider
// fails or answers nonsense. Successful lookups are cached briefly so a
// training run does not hammer the FX endpoint.
func (s *Source) Rate(ctx context.Context) float64 {
	if s.rates != nil {
		var cached interface{}
		if err := s.rates.Get(ctx, rateCacheKey, &cached); err == nil {
			if r, ok := cached.(float64); ok && r > 0 {
				return r
			}
		}
	}
	rate, err := s.provider.ExchangeRate(ctx)
	switch {
	case err == nil && rate > 0 && !math.IsNaN(rate):
		if s.rates != nil {
			if cerr := s.rates.Set(ctx, rateCacheKey, rate, s.rateTTL); cerr != nil {
				s.warn("exchange rate cache store failed", cerr)
			}
		}
		return rate
	case errors.Is(err, models.ErrUpstreamUnreachable):
		s.warn("exchange rate source unreachable, using fallback", err)
	case errors.Is(err, models.ErrMalformedResponse):
		s.warn("exchange rate response malformed, using fallback", err)
	case err != nil:
		s.warn("exchange rate fetch failed, using fallback", err)
	default:
		s.warn("exchange rate out of range, using fallback", fmt.Errorf("rate %v", rate))
	}
	return s.fallback
}

func (s *Source) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, xlogger.Error(err), xlogger.Any("fallback", s.fallback))
	}
}
