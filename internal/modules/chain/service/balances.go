package service

import (
	"context"
	"encoding/json"
	"fmt"

	"safeloop_bot/internal/models"
)

// Balances — снапшот кошелька по balanceOf обоих токенов.
func (c *Client) Balances(ctx context.Context) (models.Balances, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	base, err := c.tokenBalance(ctx, c.cfg.Chain.Base, c.cfg.Chain.BaseDecimals)
	if err != nil {
		return models.Balances{}, fmt.Errorf("base balance: %w", err)
	}
	quote, err := c.tokenBalance(ctx, c.cfg.Chain.Quote, c.cfg.Chain.QuoteDecimals)
	if err != nil {
		return models.Balances{}, fmt.Errorf("quote balance: %w", err)
	}
	return models.Balances{Base: base, Quote: quote}, nil
}

func (c *Client) tokenBalance(ctx context.Context, token string, decimals int) (float64, error) {
	res, err := c.ethCall(ctx, token, selBalanceOf+addrParam(c.cfg.Chain.Wallet))
	if err != nil {
		return 0, err
	}
	v, err := word(res, 0)
	if err != nil {
		return 0, err
	}
	return weiToFloat(v, decimals), nil
}

// bnbBalance — нативный баланс под газ.
func (c *Client) bnbBalance(ctx context.Context) (float64, error) {
	raw, err := c.call(ctx, "eth_getBalance", c.cfg.Chain.Wallet, "latest")
	if err != nil {
		return 0, err
	}
	var hexQty string
	if err := json.Unmarshal(raw, &hexQty); err != nil {
		return 0, err
	}
	v, err := parseHexBig(hexQty)
	if err != nil {
		return 0, err
	}
	return weiToFloat(v, 18), nil
}
