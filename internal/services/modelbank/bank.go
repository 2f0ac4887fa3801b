package modelbank

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	"SonaCast/internal/ml"
	xlogger "SonaCast/pkg/logger"
)

type headKey struct {
	Metal   dmodels.Metal
	Horizon drepo.Horizon
}

// Bank caches one trained head per (metal, horizon) for the process
// lifetime. Misses load persisted artifacts when present and train
// otherwise. A per-key mutex keeps at most one training run in flight per
// pair; concurrent callers for the same pair block until it finishes and
// then reuse the result.
type Bank struct {
	store   drepo.ModelStore
	trainer *Trainer
	logger  *xlogger.Logger

	mu    sync.RWMutex
	heads map[headKey]*TrainedHead

	lockMu   sync.Mutex
	keyLocks map[headKey]*sync.Mutex
}

func NewBank(store drepo.ModelStore, trainer *Trainer, logger *xlogger.Logger) *Bank {
	return &Bank{
		store:    store,
		trainer:  trainer,
		logger:   logger,
		heads:    make(map[headKey]*TrainedHead),
		keyLocks: make(map[headKey]*sync.Mutex),
	}
}

func (b *Bank) keyLock(k headKey) *sync.Mutex {
	b.lockMu.Lock()
	defer b.lockMu.Unlock()
	if l, ok := b.keyLocks[k]; ok {
		return l
	}
	l := &sync.Mutex{}
	b.keyLocks[k] = l
	return l
}

func (b *Bank) cached(k headKey) (*TrainedHead, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.heads[k]
	return h, ok
}

func (b *Bank) put(k headKey, h *TrainedHead) {
	b.mu.Lock()
	b.heads[k] = h
	b.mu.Unlock()
}

// GetOrTrain returns the head for the pair, loading or training on miss.
func (b *Bank) GetOrTrain(ctx context.Context, metal dmodels.Metal, h drepo.Horizon) (*TrainedHead, error) {
	if !drepo.IsValidHorizon(h) {
		return nil, fmt.Errorf("%w: horizon %d", dmodels.ErrInvalidParameter, h)
	}
	k := headKey{Metal: metal, Horizon: h}
	if head, ok := b.cached(k); ok {
		return head, nil
	}

	kl := b.keyLock(k)
	kl.Lock()
	defer kl.Unlock()

	// a concurrent caller may have filled the slot while we waited
	if head, ok := b.cached(k); ok {
		return head, nil
	}

	if b.store != nil && b.store.Exists(metal, h) {
		head, err := b.load(metal, h)
		if err == nil {
			b.put(k, head)
			return head, nil
		}
		if b.logger != nil {
			b.logger.Warn("stored model unreadable, retraining",
				xlogger.String("metal", string(metal)),
				xlogger.Int("horizon", int(h)),
				xlogger.Error(err))
		}
	}

	head, err := b.trainer.Train(ctx, metal, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dmodels.ErrModelUnavailable, err)
	}
	if err := b.persist(metal, h, head); err != nil && b.logger != nil {
		// the fresh head still serves; durability catches up on retrain
		b.logger.Warn("model persist failed",
			xlogger.String("metal", string(metal)),
			xlogger.Int("horizon", int(h)),
			xlogger.Error(err))
	}
	b.put(k, head)
	return head, nil
}

// Retrain always fits a fresh head. The new head is persisted first and
// only then swapped into the cache, so readers never observe a head whose
// artifacts are missing from the store.
func (b *Bank) Retrain(ctx context.Context, metal dmodels.Metal, h drepo.Horizon) error {
	if !drepo.IsValidHorizon(h) {
		return fmt.Errorf("%w: horizon %d", dmodels.ErrInvalidParameter, h)
	}
	k := headKey{Metal: metal, Horizon: h}
	kl := b.keyLock(k)
	kl.Lock()
	defer kl.Unlock()

	head, err := b.trainer.Train(ctx, metal, h)
	if err != nil {
		return fmt.Errorf("%w: %w", dmodels.ErrModelUnavailable, err)
	}
	if err := b.persist(metal, h, head); err != nil {
		return fmt.Errorf("persist %s day %d: %w", metal, h, err)
	}
	b.put(k, head)
	return nil
}

// RetrainAll refreshes every pair, continuing past per-pair failures.
func (b *Bank) RetrainAll(ctx context.Context) error {
	var errs []error
	for _, metal := range dmodels.Metals() {
		for _, h := range drepo.Horizons() {
			if err := b.Retrain(ctx, metal, h); err != nil {
				if b.logger != nil {
					b.logger.Error("retrain failed",
						xlogger.String("metal", string(metal)),
						xlogger.Int("horizon", int(h)),
						xlogger.Error(err))
				}
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (b *Bank) persist(metal dmodels.Metal, h drepo.Horizon, head *TrainedHead) error {
	if b.store == nil {
		return nil
	}
	scaler, err := encodeGob(head.Scaler)
	if err != nil {
		return err
	}
	model, err := encodeGob(head.Model)
	if err != nil {
		return err
	}
	return b.store.Save(metal, h, scaler, model)
}

func (b *Bank) load(metal dmodels.Metal, h drepo.Horizon) (*TrainedHead, error) {
	scalerBlob, modelBlob, err := b.store.Load(metal, h)
	if err != nil {
		return nil, err
	}
	var scaler ml.StandardScaler
	if err := decodeGob(scalerBlob, &scaler); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	var model ml.GBTRegressor
	if err := decodeGob(modelBlob, &model); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &TrainedHead{Scaler: &scaler, Model: &model}, nil
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(blob []byte, dest any) error {
	return gob.NewDecoder(bytes.NewReader(blob)).Decode(dest)
}
