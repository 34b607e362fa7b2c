package service

import (
	"strings"
	"testing"
	"time"

	"safeloop_bot/internal/models"
)

// passingSellInput — вход, проходящий все гарды; тесты ломают по одному.
func passingSellInput() GateInput {
	return GateInput{
		Drawdown:      0.02,
		DrawdownLimit: 0.15,
		Now:           time.Now(),
		LastSwap:      time.Now().Add(-2 * time.Hour),
		Cooldown:      time.Hour,
		Candidate:     models.ActionSell,
		Eval:          Evaluation{Delta: 0.05, Trigger: 0.01},
		Price:         85000,
		Balances:      models.Balances{Base: 1, Quote: 50000},
		AmountUSD:     150,
		MinSwapUSD:    20,
		MaxSwapUSD:    300,
	}
}

func TestGateAllGuardsPass(t *testing.T) {
	if reasons := passingSellInput().Evaluate(); len(reasons) != 0 {
		t.Fatalf("want empty reasons, got %v", reasons)
	}
}

func TestGateAccumulatesAllReasons(t *testing.T) {
	// Свежая инициализация + кулдаун + маленькая дельта: отчёт должен
	// объяснять решение целиком, а не первой причиной.
	in := passingSellInput()
	in.StartValueInitialized = true
	in.BasePointInitialized = true
	in.LastSwap = in.Now.Add(-10 * time.Minute)
	in.Eval = Evaluation{Delta: 0.004, Trigger: 0.01}

	reasons := in.Evaluate()
	want := []string{
		"startValue not set, initializing...",
		"basePoint not set, initializing...",
		"checkInterval not passed (60 min)",
		"delta 0.400% < trigger 1.00%",
	}
	if len(reasons) != len(want) {
		t.Fatalf("want %d reasons, got %v", len(want), reasons)
	}
	for i, r := range reasons {
		if r != want[i] {
			t.Fatalf("reason %d: want %q, got %q", i, want[i], r)
		}
	}
}

func TestGateDrawdownBlocks(t *testing.T) {
	in := passingSellInput()
	in.Drawdown = 0.20

	reasons := in.Evaluate()
	if len(reasons) != 1 || !strings.HasPrefix(reasons[0], "drawdown 20.00% >= limit") {
		t.Fatalf("want drawdown guard, got %v", reasons)
	}
}

func TestGateSellImbalance(t *testing.T) {
	// Продажа при quote < 5% портфеля запрещена; на покупке этот пол
	// не действует.
	in := passingSellInput()
	in.Balances = models.Balances{Base: 1, Quote: 1000} // ~1.2% от портфеля

	reasons := in.Evaluate()
	found := false
	for _, r := range reasons {
		if strings.HasPrefix(r, "portfolio imbalance: USDT ratio") {
			found = true
		}
	}
	if !found {
		t.Fatalf("want sell imbalance guard, got %v", reasons)
	}

	buy := passingSellInput()
	buy.Candidate = models.ActionBuy
	buy.Eval = Evaluation{Delta: -0.05, Trigger: 0.01}
	buy.Balances = models.Balances{Base: 1, Quote: 1000}
	for _, r := range buy.Evaluate() {
		if strings.Contains(r, "imbalance") {
			t.Fatalf("buy with positive quote must not trip imbalance, got %v", buy.Evaluate())
		}
	}
}

func TestGateBuyWithoutQuote(t *testing.T) {
	in := passingSellInput()
	in.Candidate = models.ActionBuy
	in.Eval = Evaluation{Delta: -0.05, Trigger: 0.01}
	in.Balances = models.Balances{Base: 1, Quote: 0}
	in.AmountUSD = 0

	reasons := in.Evaluate()
	joined := strings.Join(reasons, "; ")
	if !strings.Contains(joined, "portfolio imbalance: no USDT to buy") {
		t.Fatalf("want buy imbalance guard, got %v", reasons)
	}
	if !strings.Contains(joined, "not enough USDT to swap") {
		t.Fatalf("want sufficiency guard, got %v", reasons)
	}
}

func TestGateNotionalBounds(t *testing.T) {
	low := passingSellInput()
	low.AmountUSD = 10
	if reasons := low.Evaluate(); len(reasons) != 1 || reasons[0] != "amount 10.00 < minSwapUSD" {
		t.Fatalf("want min notional guard, got %v", reasons)
	}

	high := passingSellInput()
	high.AmountUSD = 500
	if reasons := high.Evaluate(); len(reasons) != 1 || reasons[0] != "amount 500.00 > maxSwapUSD" {
		t.Fatalf("want max notional guard, got %v", reasons)
	}
}

func TestGateNoProfitableLots(t *testing.T) {
	in := passingSellInput()
	in.NoProfitableLots = true
	in.AmountUSD = 0

	reasons := in.Evaluate()
	joined := strings.Join(reasons, "; ")
	if !strings.Contains(joined, "no profitable position to sell") {
		t.Fatalf("want ledger guard, got %v", reasons)
	}
}
