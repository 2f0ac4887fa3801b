package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"SonaCast/internal/domain/models"
	pkgcache "SonaCast/pkg/cache"
)

type fakeProvider struct {
	closes    models.Series
	closesErr error
	rate      float64
	rateErr   error
	rateCalls int
}

func (f *fakeProvider) DailyCloses(_ context.Context, _ models.Metal, _ int) (models.Series, error) {
	return f.closes, f.closesErr
}

func (f *fakeProvider) ExchangeRate(_ context.Context) (float64, error) {
	f.rateCalls++
	return f.rate, f.rateErr
}

func day(i int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func TestSourceRateFallbacks(t *testing.T) {
	cases := []struct {
		name string
		rate float64
		err  error
		want float64
	}{
		{"live rate", 84.5, nil, 84.5},
		{"unreachable", 0, models.ErrUpstreamUnreachable, FallbackExchangeRate},
		{"malformed", 0, models.ErrMalformedResponse, FallbackExchangeRate},
		{"other error", 0, errors.New("boom"), FallbackExchangeRate},
		{"zero rate", 0, nil, FallbackExchangeRate},
		{"negative rate", -1, nil, FallbackExchangeRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{rate: tc.rate, rateErr: tc.err}
			s := NewSource(p, nil)
			if got := s.Rate(context.Background()); got != tc.want {
				t.Fatalf("Rate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSourceRateCached(t *testing.T) {
	p := &fakeProvider{rate: 83.2}
	s := NewSource(p, nil)
	for i := 0; i < 5; i++ {
		if got := s.Rate(context.Background()); got != 83.2 {
			t.Fatalf("Rate() = %v, want 83.2", got)
		}
	}
	if p.rateCalls != 1 {
		t.Fatalf("provider called %d times, want 1", p.rateCalls)
	}
}

func TestSourceSharedRateCache(t *testing.T) {
	shared := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(8))

	p1 := &fakeProvider{rate: 83.9}
	s1 := NewSource(p1, nil)
	s1.SetRateCache(shared, time.Minute)
	if got := s1.Rate(context.Background()); got != 83.9 {
		t.Fatalf("Rate() = %v, want 83.9", got)
	}

	// a second source on the same cache never hits its own provider
	p2 := &fakeProvider{rate: 99.9}
	s2 := NewSource(p2, nil)
	s2.SetRateCache(shared, time.Minute)
	if got := s2.Rate(context.Background()); got != 83.9 {
		t.Fatalf("Rate() = %v, want shared 83.9", got)
	}
	if p2.rateCalls != 0 {
		t.Fatalf("second provider called %d times, want 0", p2.rateCalls)
	}
}

func TestSourceFallbackNotCached(t *testing.T) {
	p := &fakeProvider{rateErr: models.ErrUpstreamUnreachable}
	s := NewSource(p, nil)
	_ = s.Rate(context.Background())
	_ = s.Rate(context.Background())
	if p.rateCalls != 2 {
		t.Fatalf("provider called %d times, want 2 (fallbacks must not stick)", p.rateCalls)
	}
}

func TestBaseSeriesNormalizes(t *testing.T) {
	p := &fakeProvider{
		rate: 80,
		closes: models.Series{
			{Date: day(0), Price: 2000},
			{Date: day(1), Price: 2100},
		},
	}
	s := NewSource(p, nil)
	base, err := s.BaseSeries(context.Background(), models.Gold, 2)
	if err != nil {
		t.Fatalf("BaseSeries: %v", err)
	}
	want := 2000 * 80 / GramsPerTroyOunce * 1.03
	if diff := base[0].Price - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("normalized price = %v, want %v", base[0].Price, want)
	}
}

func TestBaseSeriesUpstreamFailure(t *testing.T) {
	p := &fakeProvider{closesErr: errors.New("timeout")}
	s := NewSource(p, nil)
	if _, err := s.BaseSeries(context.Background(), models.Silver, 90); !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}
