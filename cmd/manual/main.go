package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"safeloop_bot/internal/models"
	"safeloop_bot/internal/modules/config"
	storage "safeloop_bot/internal/modules/storage/service"
	"safeloop_bot/pkg/db"
	"safeloop_bot/pkg/logger"
)

// Ручная фиксация ввода/вывода капитала: пишет строку в sf_manual,
// baseline учёта прибыли подхватит её на следующем тике бота.
//
//	go run ./cmd/manual -type deposit -amount 500 -note "top up"
func main() {
	typ := flag.String("type", "", "deposit | withdraw")
	amount := flag.Float64("amount", 0, "amount in USD")
	note := flag.String("note", "", "optional note")
	flag.Parse()

	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var manualType models.ManualType
	switch strings.ToLower(*typ) {
	case "deposit":
		manualType = models.ManualDeposit
	case "withdraw":
		manualType = models.ManualWithdraw
	default:
		logger.Fatal("unknown -type %q, want deposit or withdraw", *typ)
	}
	if *amount <= 0 {
		logger.Fatal("-amount must be > 0, got %.2f", *amount)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
	if err != nil {
		logger.Fatal("pg pool: %v", err)
	}
	defer pool.Close()

	store := storage.NewStore(db.NewPgTxManager(pool), cfg.Strategy.PriceWindow)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("migrate: %v", err)
	}

	adj := models.ManualAdjustment{
		RuntimeID: cfg.RuntimeID,
		Type:      manualType,
		AmountUSD: *amount,
		Note:      *note,
	}
	if err := store.InsertManual(ctx, adj); err != nil {
		logger.Fatal("insert manual: %v", err)
	}

	logger.Info("recorded %s %.2f USD for runtime %s", manualType, *amount, cfg.RuntimeID)
}
