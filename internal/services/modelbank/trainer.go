// Package modelbank owns the per-(metal, horizon) price heads: training,
// persistence and an in-process cache with single-flight coordination.
package modelbank

import (
	"context"
	"fmt"
	"strconv"
	"time"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	"SonaCast/internal/ml"
	"SonaCast/internal/service/metrics"
	"SonaCast/internal/services/features"
	xlogger "SonaCast/pkg/logger"
)

// BaseSource yields the normalized INR-per-gram base series for a metal,
// most recent day last.
type BaseSource interface {
	BaseSeries(ctx context.Context, metal dmodels.Metal, days int) (dmodels.Series, error)
}

// TrainedHead pairs a fitted scaler with its boosted ensemble.
type TrainedHead struct {
	Scaler *ml.StandardScaler
	Model  *ml.GBTRegressor
}

// Predict scales one raw feature row and evaluates the head.
func (h *TrainedHead) Predict(row []float64) float64 {
	return h.Model.Predict(h.Scaler.Transform(row))
}

// TrainerConfig bounds the training window and data requirements.
type TrainerConfig struct {
	WindowDays int
	MinRows    int
	Params     ml.GBTParams
}

// DefaultTrainerConfig is the production recipe: one year of history,
// at least 100 aligned rows.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{WindowDays: 365, MinRows: 100, Params: ml.DefaultGBTParams()}
}

// Trainer fits one head per (metal, horizon) on a windowed base series.
type Trainer struct {
	source BaseSource
	cfg    TrainerConfig
	logger *xlogger.Logger
}

func NewTrainer(source BaseSource, cfg TrainerConfig, logger *xlogger.Logger) *Trainer {
	if cfg.WindowDays <= 0 {
		cfg = DefaultTrainerConfig()
	}
	return &Trainer{source: source, cfg: cfg, logger: logger}
}

// Train fetches the window, builds features, aligns the horizon-shifted
// target and fits scaler plus ensemble. Rows at the end of the window that
// have no target yet are dropped before the minimum-rows check.
func (t *Trainer) Train(ctx context.Context, metal dmodels.Metal, h drepo.Horizon) (*TrainedHead, error) {
	if !drepo.IsValidHorizon(h) {
		return nil, fmt.Errorf("%w: horizon %d", dmodels.ErrInvalidParameter, h)
	}
	start := time.Now()
	defer func() {
		metrics.TrainDuration.WithLabelValues(string(metal), strconv.Itoa(int(h))).Observe(time.Since(start).Seconds())
	}()
	base, err := t.source.BaseSeries(ctx, metal, t.cfg.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("train %s day %d: %w", metal, h, err)
	}
	rows, err := features.Build(base)
	if err != nil {
		// too short to even build features: the training taxonomy wins
		return nil, fmt.Errorf("%w: %v", dmodels.ErrInsufficientData, err)
	}

	prices := base.Prices()
	valid := len(rows) - int(h)
	if valid < t.cfg.MinRows {
		return nil, fmt.Errorf("%w: %d aligned rows for %s day %d, need %d",
			dmodels.ErrInsufficientData, max(valid, 0), metal, h, t.cfg.MinRows)
	}

	x := rows[:valid]
	y := make([]float64, valid)
	for j := 0; j < valid; j++ {
		y[j] = prices[j+features.Offset+int(h)]
	}

	scaler, err := ml.FitScaler(x)
	if err != nil {
		return nil, fmt.Errorf("train %s day %d: %w", metal, h, err)
	}
	model, err := ml.TrainGBT(scaler.TransformAll(x), y, t.cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("train %s day %d: %w", metal, h, err)
	}

	if t.logger != nil {
		t.logger.Info("model trained",
			xlogger.String("metal", string(metal)),
			xlogger.Int("horizon", int(h)),
			xlogger.Int("rows", valid))
	}
	return &TrainedHead{Scaler: scaler, Model: model}, nil
}
