package usecase

import (
	"context"
	"fmt"

	"SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	"SonaCast/internal/services/modelbank"
	xlogger "SonaCast/pkg/logger"
	"SonaCast/pkg/queue"
)

// RetrainMessageType routes retrain jobs through the queue.
const RetrainMessageType = "model.retrain"

// RetrainPayload selects the heads to refresh. Empty metal means every
// metal; zero horizon means every head of the chosen metal.
type RetrainPayload struct {
	Metal   string `json:"metal"`
	Horizon int    `json:"horizon"`
}

// Retrainer refreshes model heads, synchronously or via the job queue.
type Retrainer struct {
	bank   *modelbank.Bank
	queue  queue.QueueService
	logger *xlogger.Logger
}

func NewRetrainer(bank *modelbank.Bank, q queue.QueueService, logger *xlogger.Logger) *Retrainer {
	return &Retrainer{bank: bank, queue: q, logger: logger}
}

// Retrain refreshes the selected heads in the calling goroutine.
func (r *Retrainer) Retrain(ctx context.Context, metal string, horizon int) error {
	if metal == "" {
		return r.bank.RetrainAll(ctx)
	}
	m, err := models.ParseMetal(metal)
	if err != nil {
		return err
	}
	if horizon == 0 {
		for _, h := range drepo.Horizons() {
			if err := r.bank.Retrain(ctx, m, h); err != nil {
				return err
			}
		}
		return nil
	}
	return r.bank.Retrain(ctx, m, drepo.Horizon(horizon))
}

// Enqueue schedules the refresh on the job queue instead of blocking the
// caller. Requires a queue to be configured.
func (r *Retrainer) Enqueue(ctx context.Context, metal string, horizon int) error {
	if r.queue == nil {
		return fmt.Errorf("retrain queue not configured")
	}
	if metal != "" {
		if _, err := models.ParseMetal(metal); err != nil {
			return err
		}
	}
	if horizon != 0 && !drepo.IsValidHorizon(drepo.Horizon(horizon)) {
		return fmt.Errorf("%w: horizon %d", models.ErrInvalidParameter, horizon)
	}
	if r.logger != nil {
		r.logger.Info("retrain enqueued",
			xlogger.String("metal", metal),
			xlogger.Int("horizon", horizon))
	}
	return r.queue.PublishMessage(ctx, RetrainMessageType, RetrainPayload{Metal: metal, Horizon: horizon})
}

// RetrainJob consumes queued retrain requests.
type RetrainJob struct {
	retrainer *Retrainer
	logger    *xlogger.Logger
}

func NewRetrainJob(retrainer *Retrainer, logger *xlogger.Logger) *RetrainJob {
	return &RetrainJob{retrainer: retrainer, logger: logger}
}

func (j *RetrainJob) Name() string { return "model-retrain" }
func (j *RetrainJob) Type() string { return RetrainMessageType }

func (j *RetrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RetrainPayload](payload)
	if err != nil {
		return fmt.Errorf("retrain payload: %w", err)
	}
	if err := j.retrainer.Retrain(ctx, p.Metal, p.Horizon); err != nil {
		if j.logger != nil {
			j.logger.Error("queued retrain failed",
				xlogger.String("metal", p.Metal),
				xlogger.Int("horizon", p.Horizon),
				xlogger.Error(err))
		}
		return err
	}
	return nil
}
