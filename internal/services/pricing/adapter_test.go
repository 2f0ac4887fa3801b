package pricing

import (
	"errors"
	"testing"
	"time"

	"SonaCast/internal/domain/models"
)

func TestLocalize(t *testing.T) {
	got := Localize(100.0, 10, 0.5)
	if !approxEq(got, 1005.0, 1e-9) {
		t.Fatalf("got %v want 1005", got)
	}
	// zero spread is the identity on the total
	if got := Localize(100.0, 10, 0); !approxEq(got, 1000.0, 1e-9) {
		t.Fatalf("got %v want 1000", got)
	}
	// negative spread discounts
	if got := Localize(100.0, 1, -0.10); !approxEq(got, 99.9, 1e-9) {
		t.Fatalf("got %v want 99.9", got)
	}
}

func TestValidateUnit(t *testing.T) {
	if err := ValidateUnit(models.Gold, 10); err != nil {
		t.Fatalf("10g gold should be valid: %v", err)
	}
	if err := ValidateUnit(models.Gold, 1000); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("1kg gold should be invalid, got %v", err)
	}
	if err := ValidateUnit(models.Silver, 1000); err != nil {
		t.Fatalf("1kg silver should be valid: %v", err)
	}
	if err := ValidateUnit(models.Silver, 5); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("5g silver should be invalid, got %v", err)
	}
}

func perGramForecast(metal models.Metal, purity models.Purity) *models.Forecast {
	days := make([]models.ForecastDay, 0, 7)
	for d := 1; d <= 7; d++ {
		days = append(days, models.ForecastDay{
			Day:        d,
			Price:      100 + float64(d),
			Trend:      float64(d),
			Confidence: 95 - 5*float64(d),
		})
	}
	return &models.Forecast{
		Metal:        metal,
		Purity:       purity,
		CurrentPrice: 100,
		Days:         days,
		GeneratedAt:  time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestLocalizeForecast(t *testing.T) {
	f := perGramForecast(models.Gold, models.Purity22K)
	lf, err := LocalizeForecast(f, "Maharashtra", "Pune", 10, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lf.Unit != 10 || lf.UnitLabel != "10 grams" {
		t.Fatalf("unit fields wrong: %+v", lf)
	}
	if lf.PurityLabel != "22K" {
		t.Fatalf("purity label %q", lf.PurityLabel)
	}
	wantCurrent := 100.0 * 10 * 1.001
	if !approxEq(lf.CurrentPrice, wantCurrent, 0.01) {
		t.Fatalf("current %v want %v", lf.CurrentPrice, wantCurrent)
	}
	if len(lf.Forecast) != 7 {
		t.Fatalf("want 7 days, got %d", len(lf.Forecast))
	}
	for i, d := range lf.Forecast {
		if d.Day != i+1 {
			t.Fatalf("day ordering broken at %d: %d", i, d.Day)
		}
		wantTotal := (100 + float64(d.Day)) * 10 * 1.001
		if !approxEq(d.Price, wantTotal, 0.01) {
			t.Fatalf("day %d price %v want %v", d.Day, d.Price, wantTotal)
		}
		// per-gram stays spread-free
		if !approxEq(d.PricePerGram, 100+float64(d.Day), 0.01) {
			t.Fatalf("day %d per-gram %v", d.Day, d.PricePerGram)
		}
	}
	if lf.WeekAverage <= 0 {
		t.Fatalf("week average not computed")
	}
	// day-7 above current means an upward week trend
	if lf.WeekTrend <= 0 {
		t.Fatalf("week trend %v, want > 0", lf.WeekTrend)
	}
}

func TestLocalizeForecastSilverPurityLabel(t *testing.T) {
	f := perGramForecast(models.Silver, models.Purity24K)
	lf, err := LocalizeForecast(f, "Maharashtra", "Mumbai", 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lf.PurityLabel != "Pure" {
		t.Fatalf("silver purity label %q, want Pure", lf.PurityLabel)
	}
}

func TestLocalizeForecastBadUnit(t *testing.T) {
	f := perGramForecast(models.Gold, models.Purity24K)
	_, err := LocalizeForecast(f, "Maharashtra", "Mumbai", 7, 0)
	if !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestPurityOrdering(t *testing.T) {
	f24, _ := models.Gold.PurityFactor(models.Purity24K)
	f22, _ := models.Gold.PurityFactor(models.Purity22K)
	f18, _ := models.Gold.PurityFactor(models.Purity18K)
	if !(f18 < f22 && f22 < f24) {
		t.Fatalf("purity factors not ordered: %v %v %v", f18, f22, f24)
	}
	base := 6000.0
	if !(base*f18 < base*f22 && base*f22 < base*f24) {
		t.Fatalf("purity prices not ordered")
	}
}
