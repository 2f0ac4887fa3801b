package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	dmodels "SonaCast/internal/domain/models"
)

func TestSpotTicksSchemaMatchesInsertColumns(t *testing.T) {
	ddl := SpotTicksDDL("sonacast.spot_ticks")
	for _, col := range tickColumns {
		if !strings.Contains(ddl, col+" ") {
			t.Fatalf("insert column %q missing from DDL: %s", col, ddl)
		}
	}
	prefix := tickInsertPrefix("sonacast.spot_ticks")
	for _, col := range tickColumns {
		if !strings.Contains(prefix, col) {
			t.Fatalf("column %q missing from insert: %s", col, prefix)
		}
	}
}

func TestSpotTicksEventIDIsStringTyped(t *testing.T) {
	ddl := SpotTicksDDL("sonacast.spot_ticks")
	if !strings.Contains(ddl, "event_id String") {
		t.Fatalf("event_id not declared String: %s", ddl)
	}
	// The writers bind "<symbol>-<nanos>" as the event id, which only a
	// String column accepts.
	if strings.Contains(ddl, "UUID") {
		t.Fatalf("event_id must not be a UUID column: %s", ddl)
	}
	tick := &dmodels.Tick{
		Symbol:    "OANDA:XAU_USD",
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Price:     2050.5,
		Volume:    1,
	}
	want := fmt.Sprintf("OANDA:XAU_USD-%d", tick.Timestamp.UnixNano())
	if got := tickEventID(tick); got != want {
		t.Fatalf("event id = %q, want %q", got, want)
	}
}
