package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"safeloop_bot/internal/modules/config"
)

// Селекторы методов, которые дергаем через eth_call.
const (
	selGetReserves = "0x0902f1ac"
	selToken0      = "0x0dfe1681"
	selBalanceOf   = "0x70a08231"
)

type ServiceNotifier interface {
	SendService(ctx context.Context, format string, args ...any)
}

// Client — тонкий слой над нодой BSC (JSON-RPC) и relay-сайдкаром.
// Подписи и сборка транзакций живут в релее, здесь только чтение
// контрактов и делегирование исполнения.
type Client struct {
	cfg *config.Config
	n   ServiceNotifier

	http     *http.Client
	wsDialer *websocket.Dialer

	rpcMu sync.Mutex
	rpcID int64

	// бит-паттерн float64; 0 = данных от вотчера ещё не было
	lastStreamed atomic.Uint64

	// ориентация пары: token0 == quote (USDT)?
	orientOnce  sync.Once
	token0Quote bool
	orientErr   error
}

func NewClient(cfg *config.Config, n ServiceNotifier) *Client {
	return &Client{
		cfg:      cfg,
		n:        n,
		http:     &http.Client{Timeout: cfg.Chain.CallTimeout},
		wsDialer: &websocket.Dialer{},
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	c.rpcMu.Lock()
	c.rpcID++
	id := c.rpcID
	c.rpcMu.Unlock()

	body, err := json.Marshal(rpcRequest{Jsonrpc: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Chain.RPCURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var payload rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", payload.Error.Code, payload.Error.Message)
	}
	return payload.Result, nil
}

// ethCall — вызов view-метода контракта, результат — hex-строка.
func (c *Client) ethCall(ctx context.Context, to, data string) (string, error) {
	raw, err := c.call(ctx, "eth_call", map[string]string{"to": to, "data": data}, "latest")
	if err != nil {
		return "", err
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("unmarshal result: %w", err)
	}
	return out, nil
}

// word выдёргивает i-е 32-байтное слово из ABI-ответа.
func word(hexData string, i int) (*big.Int, error) {
	h := strings.TrimPrefix(hexData, "0x")
	if len(h) < (i+1)*64 {
		return nil, fmt.Errorf("short abi response: want word %d, have %d hex chars", i, len(h))
	}
	v, ok := new(big.Int).SetString(h[i*64:(i+1)*64], 16)
	if !ok {
		return nil, fmt.Errorf("bad abi word %d", i)
	}
	return v, nil
}

// weiToFloat — из целочисленных токен-юнитов в человеческие единицы.
func weiToFloat(v *big.Int, decimals int) float64 {
	return decimal.NewFromBigInt(v, -int32(decimals)).InexactFloat64()
}

func addrParam(addr string) string {
	a := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	return fmt.Sprintf("%064s", a)
}

func parseHexBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("bad hex quantity %q", s)
	}
	return v, nil
}

// orientation лениво выясняет, каким токеном является token0 пары.
func (c *Client) orientation(ctx context.Context) (token0Quote bool, err error) {
	c.orientOnce.Do(func() {
		var res string
		res, c.orientErr = c.ethCall(ctx, c.cfg.Chain.Pair, selToken0)
		if c.orientErr != nil {
			return
		}
		var w *big.Int
		w, c.orientErr = word(res, 0)
		if c.orientErr != nil {
			return
		}
		token0 := "0x" + fmt.Sprintf("%040x", w)
		c.token0Quote = strings.EqualFold(token0, c.cfg.Chain.Quote)
	})
	return c.token0Quote, c.orientErr
}

// callTimeout оборачивает контекст дедлайном на один внешний вызов:
// зависшая нода не должна останавливать цикл навсегда.
func (c *Client) callTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := c.cfg.Chain.CallTimeout
	if d <= 0 {
		d = 15 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
