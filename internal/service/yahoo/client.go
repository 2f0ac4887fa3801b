// Package yahoo fetches daily spot history and the USD/INR rate from the
// Yahoo finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	dmodels "SonaCast/internal/domain/models"
	xhttp "SonaCast/pkg/http"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Config selects the instruments backing each metal and the FX rate.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	GoldSymbol   string
	SilverSymbol string
	RateSymbol   string
}

// Client implements repository.HistoryProvider over the chart endpoint.
// Failures are classified: transport and status problems wrap
// ErrUpstreamUnreachable, undecodable or empty payloads wrap
// ErrMalformedResponse.
type Client struct {
	http       *xhttp.Client
	baseURL    string
	rateSymbol string
	symbols    map[dmodels.Metal]string
	now        func() time.Time
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.GoldSymbol == "" {
		cfg.GoldSymbol = "GC=F"
	}
	if cfg.SilverSymbol == "" {
		cfg.SilverSymbol = "SI=F"
	}
	if cfg.RateSymbol == "" {
		cfg.RateSymbol = "INR=X"
	}
	return &Client{
		http:       xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		baseURL:    cfg.BaseURL,
		rateSymbol: cfg.RateSymbol,
		symbols: map[dmodels.Metal]string{
			dmodels.Gold:   cfg.GoldSymbol,
			dmodels.Silver: cfg.SilverSymbol,
		},
		now: time.Now,
	}
}

type chartResult struct {
	Meta struct {
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

// DailyCloses returns up to `days` daily closes for the metal, oldest
// first. Null closes (market holidays) are skipped. The window is bounded
// with period1/period2 epochs; the chart API only accepts a fixed set of
// range values, so an arbitrary day count cannot go through `range`.
func (c *Client) DailyCloses(ctx context.Context, metal dmodels.Metal, days int) (dmodels.Series, error) {
	symbol, ok := c.symbols[metal]
	if !ok {
		return nil, fmt.Errorf("%w: metal %q", dmodels.ErrInvalidParameter, metal)
	}
	to := c.now()
	from := to.AddDate(0, 0, -days)
	res, err := c.fetchChart(ctx, symbol, map[string][]string{
		"interval": {"1d"},
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.Unix(), 10)},
	})
	if err != nil {
		return nil, err
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s chart has no quote block", dmodels.ErrMalformedResponse, symbol)
	}
	closes := res.Indicators.Quote[0].Close
	out := make(dmodels.Series, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		out = append(out, dmodels.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Price: *closes[i],
		})
	}
	return out, nil
}

// ExchangeRate returns the latest USD/INR quote.
func (c *Client) ExchangeRate(ctx context.Context) (float64, error) {
	res, err := c.fetchChart(ctx, c.rateSymbol, map[string][]string{
		"interval": {"1d"},
		"range":    {"1d"},
	})
	if err != nil {
		return 0, err
	}
	rate := res.Meta.RegularMarketPrice
	if rate <= 0 {
		return 0, fmt.Errorf("%w: rate %v for %s", dmodels.ErrMalformedResponse, rate, c.rateSymbol)
	}
	return rate, nil
}

func (c *Client) fetchChart(ctx context.Context, symbol string, query map[string][]string) (*chartResult, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/%s", c.baseURL, symbol),
		QueryParams: query,
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; sonacast/1.0)",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dmodels.ErrUpstreamUnreachable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned status %d", dmodels.ErrUpstreamUnreachable, symbol, resp.StatusCode)
	}
	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dmodels.ErrMalformedResponse, symbol, err)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s chart has no result", dmodels.ErrMalformedResponse, symbol)
	}
	return &cr.Chart.Result[0], nil
}
