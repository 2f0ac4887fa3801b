package repository

import (
	"context"
	"time"

	"SonaCast/internal/domain/models"
)

// HistoryProvider serves daily spot closes (USD per troy ounce) and the
// USD/INR exchange rate used to quote retail prices.
type HistoryProvider interface {
	DailyCloses(ctx context.Context, metal models.Metal, days int) (models.Series, error)
	ExchangeRate(ctx context.Context) (float64, error)
}

// ModelStore persists trained artifacts per (metal, horizon) pair. Scaler
// and model travel as opaque encoded blobs so the store stays codec-free.
type ModelStore interface {
	Save(metal models.Metal, h Horizon, scaler, model []byte) error
	Load(metal models.Metal, h Horizon) (scaler, model []byte, err error)
	Exists(metal models.Metal, h Horizon) bool
}

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

type TickStorage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Tick, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
