package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"safeloop_bot/internal/helper"
	"safeloop_bot/internal/models"
	"safeloop_bot/pkg/logger"
)

// Fill — фактический результат исполнения свапа.
type Fill struct {
	AmountBase  float64 `json:"amount_base"`
	AmountQuote float64 `json:"amount_quote"`
}

// ExecuteSwap делегирует исполнение relay-сайдкару (он строит и подписывает
// транзакцию). direction SELL: amount — это base (BTCB), BUY: amount — quote.
// Возврат (nil, err) означает неисполненный свап: стейт трогать нельзя.
// Без relay_url работает paper-режим: филл по цене пула, удобно для обкатки.
func (c *Client) ExecuteSwap(ctx context.Context, direction models.Action, amount, price float64) (*Fill, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount %.8f", models.ErrExecutionFailed, amount)
	}
	amount = helper.RoundDownToTick(amount, 1e-6)

	if c.cfg.Chain.RelayURL == "" {
		return paperFill(direction, amount, price), nil
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"direction": string(direction),
		"amount":    amount,
		"price":     price,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Chain.RelayURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExecutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: relay http %d: %s", models.ErrExecutionFailed, resp.StatusCode, string(b))
	}

	var payload struct {
		OK   bool   `json:"ok"`
		Fill Fill   `json:"fill"`
		Err  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode relay response: %v", models.ErrExecutionFailed, err)
	}
	if !payload.OK {
		return nil, fmt.Errorf("%w: %s", models.ErrExecutionFailed, payload.Err)
	}

	logger.Info("swap executed: %s base=%.6f quote=%.2f @ %.2f",
		direction, payload.Fill.AmountBase, payload.Fill.AmountQuote, price)
	return &payload.Fill, nil
}

func paperFill(direction models.Action, amount, price float64) *Fill {
	if direction == models.ActionSell {
		return &Fill{AmountBase: amount, AmountQuote: amount * price}
	}
	return &Fill{AmountBase: amount / price, AmountQuote: amount}
}
