package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	pkgkafka "SonaCast/pkg/kafka"
)

// tickColumns is the insert column list for spot_ticks. Must stay in step
// with SpotTicksDDL.
var tickColumns = []string{"ts", "symbol", "price", "volume", "source", "event_id"}

// SpotTicksDDL returns the CREATE TABLE statement for the tick table.
// event_id is a plain String: the writers derive it from symbol and
// timestamp so replayed Kafka messages overwrite rather than duplicate,
// and a UUID column would reject that form.
func SpotTicksDDL(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + table +
		" (ts DateTime64(3), symbol String, price Float64, volume Float64, source String, event_id String)" +
		" ENGINE=ReplacingMergeTree ORDER BY (symbol, ts, event_id)"
}

func tickInsertPrefix(table string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES", table, strings.Join(tickColumns, ", "))
}

func tickEventID(t *dmodels.Tick) string {
	return fmt.Sprintf("%s-%d", t.Symbol, t.Timestamp.UnixNano())
}

// CHTickStorage implements TickStorage for ClickHouse.
type CHTickStorage struct {
	db    *sql.DB
	table string
}

// NewCHTickStorage creates ClickHouse tick storage.
func NewCHTickStorage(db *sql.DB, table string) drepo.TickStorage {
	return &CHTickStorage{db: db, table: table}
}

func (s *CHTickStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *CHTickStorage) Store(ctx context.Context, t *dmodels.Tick) error {
	q := tickInsertPrefix(s.table) + " (?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, q,
		t.Timestamp,
		t.Symbol,
		t.Price,
		t.Volume,
		"spot",
		tickEventID(t),
	)
	return err
}

func (s *CHTickStorage) StoreBatch(ctx context.Context, ticks []*dmodels.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	// Multi-row VALUES insert to cut round-trips; 2000 rows per chunk.
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*len(tickColumns))
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				t.Timestamp,
				t.Symbol,
				t.Price,
				t.Volume,
				"spot",
				tickEventID(t),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := tickInsertPrefix(s.table) + " " + strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *CHTickStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*dmodels.Tick, error) {
	q := fmt.Sprintf("SELECT symbol, ts, price, volume FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []*dmodels.Tick
	for rows.Next() {
		var t dmodels.Tick
		if err := rows.Scan(&t.Symbol, &t.Timestamp, &t.Price, &t.Volume); err != nil {
			return nil, err
		}
		ticks = append(ticks, &t)
	}
	return ticks, rows.Err()
}

func (s *CHTickStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHTickStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaTickPublisher implements Publisher for Kafka.
type KafkaTickPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaTickPublisher creates Kafka publisher.
func NewKafkaTickPublisher(producer *pkgkafka.Producer, topic string) drepo.Publisher {
	return &KafkaTickPublisher{producer: producer, topic: topic}
}

func (p *KafkaTickPublisher) Publish(ctx context.Context, t *dmodels.Tick) error {
	return p.producer.Publish(ctx, p.topic, []byte(t.Symbol), tickPayload(t))
}

func (p *KafkaTickPublisher) PublishBatch(ctx context.Context, ticks []*dmodels.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ticks))
	for i, t := range ticks {
		msgs[i] = pkgkafka.Message{Key: []byte(t.Symbol), Value: tickPayload(t)}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaTickPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func tickPayload(t *dmodels.Tick) map[string]interface{} {
	return map[string]interface{}{
		"symbol": t.Symbol,
		"t":      t.Timestamp.UnixMilli(),
		"c":      t.Price,
		"v":      t.Volume,
	}
}
