package modelbank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	"SonaCast/internal/ml"
	"SonaCast/internal/services/features"
)

// fakeSource generates a linear base series and counts fetches.
type fakeSource struct {
	mu    sync.Mutex
	calls int
	base  float64
	step  float64
	delay time.Duration
	err   error
}

func (s *fakeSource) BaseSeries(_ context.Context, _ dmodels.Metal, days int) (dmodels.Series, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make(dmodels.Series, days)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		out[i] = dmodels.PricePoint{Date: start.AddDate(0, 0, i), Price: s.base + s.step*float64(i)}
	}
	return out, nil
}

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memStore keeps artifacts in memory; saveErr simulates a broken disk.
type memStore struct {
	mu      sync.Mutex
	blobs   map[string][2][]byte
	saveErr error
}

func newMemStore() *memStore { return &memStore{blobs: make(map[string][2][]byte)} }

func (s *memStore) key(m dmodels.Metal, h drepo.Horizon) string {
	return fmt.Sprintf("%s_day%d", m, h)
}

func (s *memStore) Save(m dmodels.Metal, h drepo.Horizon, scaler, model []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[s.key(m, h)] = [2][]byte{scaler, model}
	return nil
}

func (s *memStore) Load(m dmodels.Metal, h drepo.Horizon) ([]byte, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[s.key(m, h)]
	if !ok {
		return nil, nil, fmt.Errorf("not found")
	}
	return b[0], b[1], nil
}

func (s *memStore) Exists(m dmodels.Metal, h drepo.Horizon) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[s.key(m, h)]
	return ok
}

// buildLastRow computes the most recent full feature row of a series.
func buildLastRow(s dmodels.Series) ([]float64, error) {
	rows, err := features.Build(s)
	if err != nil {
		return nil, err
	}
	return rows[len(rows)-1], nil
}

func testTrainerCfg() TrainerConfig {
	return TrainerConfig{
		WindowDays: 200,
		MinRows:    100,
		Params:     ml.GBTParams{Trees: 20, MaxDepth: 3, LearningRate: 0.1, Subsample: 0.8, ColSample: 0.8, Seed: 42},
	}
}

func newTestBank(src *fakeSource, store drepo.ModelStore) *Bank {
	return NewBank(store, NewTrainer(src, testTrainerCfg(), nil), nil)
}

func TestTrainerInsufficientData(t *testing.T) {
	src := &fakeSource{base: 1000, step: 2}
	cfg := testTrainerCfg()
	cfg.WindowDays = 60 // 60 steps leave ~28 aligned rows
	tr := NewTrainer(src, cfg, nil)
	_, err := tr.Train(context.Background(), dmodels.Gold, drepo.H3)
	if !errors.Is(err, dmodels.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainerLearnsLinearTrend(t *testing.T) {
	src := &fakeSource{base: 1000, step: 2}
	cfg := testTrainerCfg()
	cfg.WindowDays = 400
	tr := NewTrainer(src, cfg, nil)
	head, err := tr.Train(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	series, _ := src.BaseSeries(context.Background(), dmodels.Gold, 400)
	rows, err := buildLastRow(series)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	current := series[len(series)-1].Price
	pred := head.Predict(rows)
	// trees cannot extrapolate past the training range, but a one-day-ahead
	// prediction on a smooth ramp should land within 2% of the last close
	if math.Abs(pred-current)/current > 0.02 {
		t.Fatalf("prediction %v too far from %v", pred, current)
	}
}

func TestBankTrainsOnceAndCaches(t *testing.T) {
	src := &fakeSource{base: 1000, step: 2}
	b := newTestBank(src, newMemStore())

	h1, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("cache should return the same head")
	}
	if src.count() != 1 {
		t.Fatalf("trained %d times, want 1", src.count())
	}
}

func TestBankLoadsPersistedArtifacts(t *testing.T) {
	store := newMemStore()
	src := &fakeSource{base: 1000, step: 2}
	b1 := newTestBank(src, store)
	orig, err := b1.GetOrTrain(context.Background(), dmodels.Silver, drepo.H2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trained := src.count()

	// a fresh process finds the artifacts and skips training
	b2 := newTestBank(src, store)
	loaded, err := b2.GetOrTrain(context.Background(), dmodels.Silver, drepo.H2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.count() != trained {
		t.Fatalf("loaded bank retrained: %d -> %d", trained, src.count())
	}

	// decoded artifacts must predict exactly what the trained head does
	series, _ := src.BaseSeries(context.Background(), dmodels.Silver, 200)
	row, err := buildLastRow(series)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	if got, want := loaded.Predict(row), orig.Predict(row); got != want {
		t.Fatalf("reloaded head predicts %v, trained head %v", got, want)
	}
}

func TestBankSingleFlight(t *testing.T) {
	src := &fakeSource{base: 1000, step: 2, delay: 50 * time.Millisecond}
	b := newTestBank(src, newMemStore())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H3); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if src.count() != 1 {
		t.Fatalf("concurrent callers trained %d times, want 1", src.count())
	}
}

func TestBankInvalidHorizon(t *testing.T) {
	b := newTestBank(&fakeSource{base: 1000, step: 2}, newMemStore())
	if _, err := b.GetOrTrain(context.Background(), dmodels.Gold, 5); !errors.Is(err, dmodels.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if err := b.Retrain(context.Background(), dmodels.Gold, 0); !errors.Is(err, dmodels.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestBankTrainFailureIsModelUnavailable(t *testing.T) {
	src := &fakeSource{err: dmodels.ErrDataUnavailable}
	b := newTestBank(src, newMemStore())
	_, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if !errors.Is(err, dmodels.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	// the cause stays visible through the wrap
	if !errors.Is(err, dmodels.ErrDataUnavailable) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestBankRetrainSwapsHead(t *testing.T) {
	src := &fakeSource{base: 1000, step: 2}
	b := newTestBank(src, newMemStore())
	before, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Retrain(context.Background(), dmodels.Gold, drepo.H1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before == after {
		t.Fatalf("retrain should swap in a fresh head")
	}
}

func TestBankRetrainKeepsOldHeadOnPersistFailure(t *testing.T) {
	store := newMemStore()
	src := &fakeSource{base: 1000, step: 2}
	b := newTestBank(src, store)
	old, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.saveErr = fmt.Errorf("disk full")
	if err := b.Retrain(context.Background(), dmodels.Gold, drepo.H1); err == nil {
		t.Fatalf("expected persist failure to surface")
	}
	cur, err := b.GetOrTrain(context.Background(), dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur != old {
		t.Fatalf("failed retrain must not swap the cached head")
	}
}
