package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"safeloop_bot/pkg/logger"
)

// Топик события Sync(uint112,uint112) у V2-пары.
const syncTopic = "0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1"

// LastStreamedPrice — последняя цена, увиденная вотчером (0, если его нет
// или событий ещё не было). Внутри цикла опрос через eth_call главнее.
func (c *Client) LastStreamedPrice() float64 {
	return math.Float64frombits(c.lastStreamed.Load())
}

// WatchReserves подписывается на Sync-логи пары через WS ноды и держит
// свежую цену. Реконнект с паузой, ping каждые 20s — иначе нода рвёт
// соединение. Запускается только если ws_url задан.
func (c *Client) WatchReserves(ctx context.Context) {
	url := c.cfg.Chain.WSURL
	if url == "" {
		return
	}

	token0Quote, err := c.orientation(ctx)
	if err != nil {
		logger.Warn("ws watcher: orientation failed, watcher disabled: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("ws connect %s", url)
		conn, _, err := c.wsDialer.Dial(url, nil)
		if err != nil {
			logger.Warn("ws dial error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		sub := map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "eth_subscribe",
			"params": []any{"logs", map[string]any{
				"address": c.cfg.Chain.Pair,
				"topics":  []string{syncTopic},
			}},
		}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Warn("ws subscribe error: %v", err)
			_ = conn.Close()
			continue
		}

		// пингер живёт ровно столько, сколько живёт это соединение:
		// readDone закрывает читающий цикл перед реконнектом
		readDone := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-readDone:
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]any{
						"jsonrpc": "2.0", "id": 2, "method": "net_version", "params": []any{},
					})
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Warn("ws read error: %v", err)
				_ = conn.Close()
				close(readDone)
				break
			}

			var frame struct {
				Method string `json:"method"`
				Params struct {
					Result struct {
						Data string `json:"data"`
					} `json:"result"`
				} `json:"params"`
			}
			if err := json.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Method != "eth_subscription" || frame.Params.Result.Data == "" {
				continue
			}

			reserve0, err := word(frame.Params.Result.Data, 0)
			if err != nil {
				continue
			}
			reserve1, err := word(frame.Params.Result.Data, 1)
			if err != nil {
				continue
			}

			quoteRes, baseRes := reserve0, reserve1
			if !token0Quote {
				quoteRes, baseRes = reserve1, reserve0
			}
			quote := weiToFloat(quoteRes, c.cfg.Chain.QuoteDecimals)
			base := weiToFloat(baseRes, c.cfg.Chain.BaseDecimals)
			if quote == 0 || base == 0 {
				continue
			}

			c.lastStreamed.Store(math.Float64bits(quote / base))
		}
	}
}
