package service

import (
	"context"
	"fmt"

	"safeloop_bot/internal/models"
	chain "safeloop_bot/internal/modules/chain/service"
	"safeloop_bot/internal/modules/config"
	storage "safeloop_bot/internal/modules/storage/service"
	"safeloop_bot/pkg/logger"
)

// Warmuper поднимает рабочий стейт перед первым тиком: грузит строку
// sf_system либо заводит новую по живым цене и балансам, и добирает
// окно цен из диагностического лога, если серия после рестарта короткая.
type Warmuper struct {
	cfg   *config.Config
	store *storage.Store
	chain *chain.Client
}

func NewWarmuper(cfg *config.Config, store *storage.Store, chain *chain.Client) *Warmuper {
	return &Warmuper{cfg: cfg, store: store, chain: chain}
}

func (w *Warmuper) Warmup(ctx context.Context) (*models.SystemState, error) {
	state, ok, err := w.store.LoadState(ctx, w.cfg.RuntimeID)
	if err != nil {
		return nil, err
	}

	if !ok {
		price := w.chain.PoolPrice(ctx)
		if price <= 0 {
			return nil, fmt.Errorf("%w: pool price unavailable during init", models.ErrTransientData)
		}
		balances, err := w.chain.Balances(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrTransientData, err)
		}

		if err := w.store.CreateState(ctx, w.cfg.RuntimeID, price, balances); err != nil {
			return nil, err
		}
		logger.Info("state initialized: runtime=%s price=%.2f usdt=%.2f btc=%.6f",
			w.cfg.RuntimeID, price, balances.Quote, balances.Base)

		state, ok, err = w.store.LoadState(ctx, w.cfg.RuntimeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: state row missing right after create", models.ErrInvariant)
		}
	}

	// короткая серия после рестарта оставила бы моментум холодным надолго
	if state.Prices.Len() < state.Prices.Cap() {
		backfill, err := w.store.BackfillPrices(ctx, w.cfg.RuntimeID, w.cfg.Strategy.PriceWindow)
		if err != nil {
			logger.Warn("price backfill failed: %v", err)
		} else if len(backfill) > state.Prices.Len() {
			state.Prices = models.RestorePriceWindow(w.cfg.Strategy.PriceWindow, backfill)
			logger.Info("price window backfilled: %d points", state.Prices.Len())
		}
	}

	return state, nil
}
