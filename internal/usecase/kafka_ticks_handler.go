package usecase

import (
	"context"
	"encoding/json"
	"time"

	"SonaCast/internal/domain/models"
	domrepo "SonaCast/internal/domain/repository"
	pkgkafka "SonaCast/pkg/kafka"
)

// KafkaTicksHandler consumes spot tick messages from Kafka and writes them to storage.
type KafkaTicksHandler struct {
	topic   string
	storage domrepo.TickStorage
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, storage domrepo.TickStorage, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, c, v} with t in milliseconds
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	ts := time.UnixMilli(m.T).UTC()
	if m.T < 1e11 { // seconds, not ms
		ts = time.Unix(m.T, 0).UTC()
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Tick{
		Symbol:    m.Symbol,
		Price:     m.C,
		Volume:    m.V,
		Timestamp: ts,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
