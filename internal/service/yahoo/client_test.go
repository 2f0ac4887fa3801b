package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	dmodels "SonaCast/internal/domain/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(Config{BaseURL: srv.URL})
	return c, srv
}

func TestDailyClosesSkipsNulls(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"regularMarketPrice":2050.5},
		"timestamp":[1735689600,1735776000,1735862400],
		"indicators":{"quote":[{"close":[2000.0,null,2010.5]}]}
	}]}}`
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
	defer srv.Close()

	s, err := c.DailyCloses(context.Background(), dmodels.Gold, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("null close not skipped: %d points", len(s))
	}
	if s[0].Price != 2000.0 || s[1].Price != 2010.5 {
		t.Fatalf("prices wrong: %+v", s)
	}
	if !s[1].Date.After(s[0].Date) {
		t.Fatalf("order wrong")
	}
}

func TestDailyClosesRequestShape(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"close":[1.0]}]}}]}}`))
	})
	defer srv.Close()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	if _, err := c.DailyCloses(context.Background(), dmodels.Silver, 90); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/SI=F" {
		t.Fatalf("path %q", gotPath)
	}
	if gotQuery.Get("interval") != "1d" {
		t.Fatalf("interval %q", gotQuery.Get("interval"))
	}
	// The chart API rejects arbitrary day counts as a range value, so the
	// window must be bounded with epoch parameters instead.
	if gotQuery.Has("range") {
		t.Fatalf("unexpected range param %q", gotQuery.Get("range"))
	}
	wantFrom := strconv.FormatInt(fixed.AddDate(0, 0, -90).Unix(), 10)
	wantTo := strconv.FormatInt(fixed.Unix(), 10)
	if gotQuery.Get("period1") != wantFrom {
		t.Fatalf("period1 = %q, want %q", gotQuery.Get("period1"), wantFrom)
	}
	if gotQuery.Get("period2") != wantTo {
		t.Fatalf("period2 = %q, want %q", gotQuery.Get("period2"), wantTo)
	}
}

func TestExchangeRateRequestShape(t *testing.T) {
	var gotRange string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":83.4}}]}}`))
	})
	defer srv.Close()

	if _, err := c.ExchangeRate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRange != "1d" {
		t.Fatalf("range %q", gotRange)
	}
}

func TestFetchStatusErrorIsUnreachable(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := c.DailyCloses(context.Background(), dmodels.Gold, 30)
	if !errors.Is(err, dmodels.ErrUpstreamUnreachable) {
		t.Fatalf("expected ErrUpstreamUnreachable, got %v", err)
	}
}

func TestFetchTransportErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := New(Config{BaseURL: srv.URL})
	srv.Close() // connection refused from here on

	_, err := c.ExchangeRate(context.Background())
	if !errors.Is(err, dmodels.ErrUpstreamUnreachable) {
		t.Fatalf("expected ErrUpstreamUnreachable, got %v", err)
	}
}

func TestFetchBadJSONIsMalformed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":`))
	})
	defer srv.Close()

	_, err := c.DailyCloses(context.Background(), dmodels.Gold, 30)
	if !errors.Is(err, dmodels.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestFetchEmptyResultIsMalformed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[]}}`))
	})
	defer srv.Close()

	_, err := c.ExchangeRate(context.Background())
	if !errors.Is(err, dmodels.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestExchangeRate(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":83.4}}]}}`))
	})
	defer srv.Close()

	rate, err := c.ExchangeRate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 83.4 {
		t.Fatalf("rate %v", rate)
	}
}

func TestExchangeRateNonPositiveIsMalformed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":0}}]}}`))
	})
	defer srv.Close()

	_, err := c.ExchangeRate(context.Background())
	if !errors.Is(err, dmodels.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
