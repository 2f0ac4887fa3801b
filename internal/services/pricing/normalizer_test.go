package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"SonaCast/internal/domain/models"
)

func approxEq(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestNormalizeGold(t *testing.T) {
	d := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	raw := models.Series{{Date: d, Price: 2000.0}}
	got, err := Normalize(raw, 83.0, models.Gold.Markup())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2000.0 * 83.0 / GramsPerTroyOunce * 1.03
	if !approxEq(got[0].Price, want, 1e-9) {
		t.Fatalf("got %v want %v", got[0].Price, want)
	}
	if !got[0].Date.Equal(d) {
		t.Fatalf("date not preserved")
	}
}

func TestNormalizeSilverMarkup(t *testing.T) {
	raw := models.Series{{Price: 25.0}}
	got, err := Normalize(raw, 80.0, models.Silver.Markup())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 25.0 * 80.0 / GramsPerTroyOunce * 1.05
	if !approxEq(got[0].Price, want, 1e-9) {
		t.Fatalf("got %v want %v", got[0].Price, want)
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	raw := make(models.Series, 5)
	for i := range raw {
		raw[i] = models.PricePoint{
			Date:  time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Price: float64(1000 + i),
		}
	}
	got, err := Normalize(raw, 83.0, 1.03)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(raw) {
		t.Fatalf("length changed: %d != %d", len(got), len(raw))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Date.After(got[i-1].Date) {
			t.Fatalf("order not preserved at %d", i)
		}
		if got[i].Price <= got[i-1].Price {
			t.Fatalf("monotonic input should stay monotonic")
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize(nil, 83.0, 1.03)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}
