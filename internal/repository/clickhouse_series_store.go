package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	pkgch "SonaCast/pkg/clickhouse"
	applogger "SonaCast/pkg/logger"
)

// CHSeriesStore serves daily closes aggregated from the raw tick table.
// The close of a day is the last tick price observed in it.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, table string) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) DailyCloses(ctx context.Context, symbol string, days int) (dmodels.Series, error) {
	start := time.Now()
	const qtpl = `
        SELECT toDate(ts) AS day, argMax(price, ts) AS close
        FROM %s
        WHERE symbol = ?
        GROUP BY day
        ORDER BY day DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, days)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily_closes query error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("daily closes: %w", err)
	}
	defer rows.Close()

	tmp := make(dmodels.Series, 0, days)
	for rows.Next() {
		var day time.Time
		var close float64
		if err := rows.Scan(&day, &close); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse daily_closes scan error",
					applogger.String("table", s.table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan close: %w", err)
		}
		tmp = append(tmp, dmodels.PricePoint{Date: day.UTC(), Price: close})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse daily_closes ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

// StoreHistoryProvider serves metal history from the tick-fed series store
// while delegating the exchange rate to the remote provider. Selected with
// history backend "clickhouse".
type StoreHistoryProvider struct {
	store   drepo.SeriesStore
	rates   drepo.HistoryProvider
	symbols map[dmodels.Metal]string
}

func NewStoreHistoryProvider(store drepo.SeriesStore, rates drepo.HistoryProvider, symbols map[dmodels.Metal]string) *StoreHistoryProvider {
	return &StoreHistoryProvider{store: store, rates: rates, symbols: symbols}
}

func (p *StoreHistoryProvider) DailyCloses(ctx context.Context, metal dmodels.Metal, days int) (dmodels.Series, error) {
	symbol, ok := p.symbols[metal]
	if !ok {
		return nil, fmt.Errorf("%w: metal %q", dmodels.ErrInvalidParameter, metal)
	}
	return p.store.DailyCloses(ctx, symbol, days)
}

func (p *StoreHistoryProvider) ExchangeRate(ctx context.Context) (float64, error) {
	return p.rates.ExchangeRate(ctx)
}
