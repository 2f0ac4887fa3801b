package main

import (
	"context"
	"flag"
	"log"
	"time"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	internalrepo "SonaCast/internal/repository"
	"SonaCast/internal/service/yahoo"
	"SonaCast/internal/services/modelbank"
	"SonaCast/internal/services/pricing"
	applogger "SonaCast/pkg/logger"
)

// Trains model heads from the command line, without the full server.
// Useful for warming the artifact directory before first deploy.
func main() {
	modelsDir := flag.String("models", "models", "model artifact directory")
	metal := flag.String("metal", "", "metal to train (empty = all)")
	horizon := flag.Int("horizon", 0, "forecast horizon 1..3 (0 = all)")
	window := flag.Int("window", 0, "training window in days (0 = default)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	src := pricing.NewSource(yahoo.New(yahoo.Config{}), l)
	tc := modelbank.DefaultTrainerConfig()
	if *window > 0 {
		tc.WindowDays = *window
	}
	bank := modelbank.NewBank(internalrepo.NewFSModelStore(*modelsDir), modelbank.NewTrainer(src, tc, l), l)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *metal == "" {
		if err := bank.RetrainAll(ctx); err != nil {
			log.Fatalf("train: %v", err)
		}
		return
	}

	m, err := dmodels.ParseMetal(*metal)
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	horizons := drepo.Horizons()
	if *horizon != 0 {
		if !drepo.IsValidHorizon(drepo.Horizon(*horizon)) {
			log.Fatalf("train: invalid horizon %d", *horizon)
		}
		horizons = []drepo.Horizon{drepo.Horizon(*horizon)}
	}
	for _, h := range horizons {
		if err := bank.Retrain(ctx, m, h); err != nil {
			log.Fatalf("train %s day %d: %v", m, h, err)
		}
	}
}
