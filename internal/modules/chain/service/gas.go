package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"safeloop_bot/pkg/logger"
)

// KeepGasPumping — предцикловая подкачка газа: если BNB просел ниже порога,
// просим релей свапнуть немного USDT в WBNB. Fire-and-forget: любая ошибка
// здесь логируется и не блокирует цикл.
func (c *Client) KeepGasPumping(ctx context.Context) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	bnb, err := c.bnbBalance(ctx)
	if err != nil {
		logger.Warn("gas check failed: %v", err)
		return
	}
	if bnb >= c.cfg.Chain.GasMinBNB {
		return
	}

	logger.Warn("low BNB balance (%.4f) — auto-refill triggered", bnb)

	if c.cfg.Chain.RelayURL == "" {
		return // paper-режим: газ не нужен
	}

	body, _ := json.Marshal(map[string]any{
		"amount_usd": c.cfg.Chain.GasRefillUSD,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Chain.RelayURL+"/gas-refill", bytes.NewReader(body))
	if err != nil {
		logger.Warn("gas refill request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("auto-refill failed: %v", err)
		c.notify(ctx, "❌ GAS_REFILL_ERROR\nAuto-refill failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		logger.Warn("auto-refill failed: http %d", resp.StatusCode)
		c.notify(ctx, "❌ GAS_REFILL_ERROR\nAuto-refill failed: http %d", resp.StatusCode)
		return
	}

	logger.Info("auto-refill: swapped %.0f USDT to WBNB for gas", c.cfg.Chain.GasRefillUSD)
	c.notify(ctx, "🔁 GAS_REFILL\nSwapped %.0f USDT to WBNB for gas", c.cfg.Chain.GasRefillUSD)
}
