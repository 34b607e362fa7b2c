package service

import (
	"context"

	"safeloop_bot/pkg/logger"
)

// PoolPrice — спот-цена BTCB в USDT из резервов V2-пары.
// 0 — это "цены нет в этом цикле" (сбой RPC, пустые резервы), не валидная
// цена: вызывающий обязан уйти в HOLD без мутаций.
func (c *Client) PoolPrice(ctx context.Context) float64 {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	res, err := c.ethCall(ctx, c.cfg.Chain.Pair, selGetReserves)
	if err != nil {
		logger.Warn("getReserves failed: %v", err)
		c.notify(ctx, "⚠️ Pool price fetch failed:\n%v", err)
		return 0
	}

	reserve0, err := word(res, 0)
	if err != nil {
		logger.Warn("getReserves decode: %v", err)
		return 0
	}
	reserve1, err := word(res, 1)
	if err != nil {
		logger.Warn("getReserves decode: %v", err)
		return 0
	}

	token0Quote, err := c.orientation(ctx)
	if err != nil {
		logger.Warn("pair orientation: %v", err)
		return 0
	}

	quoteRes, baseRes := reserve0, reserve1
	if !token0Quote {
		quoteRes, baseRes = reserve1, reserve0
	}

	quote := weiToFloat(quoteRes, c.cfg.Chain.QuoteDecimals)
	base := weiToFloat(baseRes, c.cfg.Chain.BaseDecimals)

	if quote == 0 || base == 0 {
		logger.Warn("reserves zero: quote=%f base=%f", quote, base)
		c.notify(ctx, "⚠️ Pair reserves empty:\nUSDT=%.2f BTCB=%.6f", quote, base)
		return 0
	}

	return quote / base
}

func (c *Client) notify(ctx context.Context, format string, args ...any) {
	if c.n != nil {
		c.n.SendService(ctx, format, args...)
	}
}
