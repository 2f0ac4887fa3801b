package locale

import (
	"errors"
	"testing"

	"SonaCast/internal/domain/models"
)

func TestSpreadBaseCity(t *testing.T) {
	got, err := Spread("Maharashtra", "Mumbai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.0 {
		t.Fatalf("Mumbai spread %v, want 0", got)
	}
}

func TestSpreadDiscountCity(t *testing.T) {
	got, err := Spread("Tamil Nadu", "Chennai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got >= 0 {
		t.Fatalf("Chennai trades at a discount, got %v", got)
	}
}

func TestSpreadUnknownState(t *testing.T) {
	_, err := Spread("Atlantis", "Mumbai")
	if !errors.Is(err, models.ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestSpreadCityStateMismatch(t *testing.T) {
	// real city, wrong state
	_, err := Spread("Kerala", "Mumbai")
	if !errors.Is(err, models.ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestEveryListedCityHasSpread(t *testing.T) {
	for _, state := range States() {
		cs, err := Cities(state)
		if err != nil {
			t.Fatalf("cities for %s: %v", state, err)
		}
		for _, c := range cs {
			if _, err := Spread(state, c); err != nil {
				t.Fatalf("no spread for %s/%s: %v", state, c, err)
			}
		}
	}
}
