package service

import (
	"testing"

	"safeloop_bot/internal/models"
)

func TestComputeProfitFromTrading(t *testing.T) {
	start := models.Balances{Base: 1, Quote: 1000}
	current := models.Balances{Base: 1, Quote: 1500}

	got := ComputeProfit(start, current, 80000, 0)
	if !almostEqual(got, 500) {
		t.Fatalf("want 500, got %.2f", got)
	}
}

func TestComputeProfitAbsorbsDeposit(t *testing.T) {
	// Депозит 500 USD поднял баланс, но baseline поглощает его:
	// торговой прибыли нет.
	start := models.Balances{Base: 1, Quote: 1000}
	current := models.Balances{Base: 1, Quote: 1500}

	got := ComputeProfit(start, current, 80000, 500)
	if !almostEqual(got, 0) {
		t.Fatalf("deposit must not look like profit, got %.2f", got)
	}
}

func TestComputeProfitAbsorbsWithdraw(t *testing.T) {
	start := models.Balances{Base: 1, Quote: 1500}
	current := models.Balances{Base: 1, Quote: 1000}

	got := ComputeProfit(start, current, 80000, -500)
	if !almostEqual(got, 0) {
		t.Fatalf("withdraw must not look like loss, got %.2f", got)
	}
}

func TestDrawdown(t *testing.T) {
	if got := Drawdown(1000, 850); !almostEqual(got, 0.15) {
		t.Fatalf("want drawdown 0.15, got %.4f", got)
	}
	if got := Drawdown(1000, 1100); got >= 0 {
		t.Fatalf("gain must produce negative drawdown, got %.4f", got)
	}
	if got := Drawdown(0, 850); got != 0 {
		t.Fatalf("zero start value must produce zero drawdown, got %.4f", got)
	}
}
