package service

import (
	"errors"
	"testing"

	"safeloop_bot/internal/models"
)

func TestSelectProfitableSkipsLosingLots(t *testing.T) {
	lots := []models.Lot{
		{ID: 1, AmountBase: 0.5, Price: 70000, Status: models.LotActive},
		{ID: 2, AmountBase: 0.3, Price: 90000, Status: models.LotActive},
	}

	sales, total := SelectProfitable(lots, 85000, 0.01, 0.5)

	if len(sales) != 1 || sales[0].LotID != 1 {
		t.Fatalf("want only lot 1 (bought below price), got %v", sales)
	}
	if !almostEqual(total, 0.5) || !almostEqual(sales[0].Remaining, 0) {
		t.Fatalf("want full 0.5 from lot 1, got total=%.6f sales=%v", total, sales)
	}

	// после списания остаётся только лот @90000 — base point садится на него
	remaining, err := ApplySales(lots, sales)
	if err != nil {
		t.Fatal(err)
	}
	bp, err := Rebase(remaining, 85000)
	if err != nil || !almostEqual(bp, 90000) {
		t.Fatalf("want base point 90000 from the surviving lot, got %.2f err=%v", bp, err)
	}
}

func TestSelectProfitableCheapestFirstWithPartialLast(t *testing.T) {
	lots := []models.Lot{
		{ID: 2, AmountBase: 0.4, Price: 80000, Status: models.LotActive},
		{ID: 1, AmountBase: 0.4, Price: 70000, Status: models.LotActive},
	}

	sales, total := SelectProfitable(lots, 85000, 0.01, 0.5)

	if len(sales) != 2 {
		t.Fatalf("want two sales, got %v", sales)
	}
	if sales[0].LotID != 1 || !almostEqual(sales[0].Amount, 0.4) {
		t.Fatalf("cheapest entry must go first in full, got %v", sales[0])
	}
	if sales[1].LotID != 2 || !almostEqual(sales[1].Amount, 0.1) || !almostEqual(sales[1].Remaining, 0.3) {
		t.Fatalf("last lot must be clipped to the cap, got %v", sales[1])
	}
	if !almostEqual(total, 0.5) {
		t.Fatalf("want total 0.5, got %.6f", total)
	}
}

func TestSelectProfitableNothingToSell(t *testing.T) {
	lots := []models.Lot{
		{ID: 1, AmountBase: 0.5, Price: 90000, Status: models.LotActive},
		{ID: 2, AmountBase: 0.5, Price: 70000, Status: models.LotClosed},
	}
	if sales, total := SelectProfitable(lots, 60000, 0.01, 1); sales != nil || total != 0 {
		t.Fatalf("losing and closed lots must never sell, got %v total=%.6f", sales, total)
	}
}

func TestRebaseWeightedAverage(t *testing.T) {
	lots := []models.Lot{
		{ID: 1, AmountBase: 0.2, Price: 70000, Status: models.LotActive},
		{ID: 2, AmountBase: 0.3, Price: 90000, Status: models.LotActive},
		{ID: 3, AmountBase: 1.0, Price: 10, Status: models.LotClosed}, // не участвует
	}

	bp, err := Rebase(lots, 85000)
	if err != nil {
		t.Fatal(err)
	}
	want := (0.2*70000 + 0.3*90000) / 0.5
	if !almostEqual(bp, want) {
		t.Fatalf("want base point %.2f, got %.2f", want, bp)
	}
}

func TestRebaseResetsToPriceWithoutLots(t *testing.T) {
	bp, err := Rebase(nil, 85000)
	if err != nil || !almostEqual(bp, 85000) {
		t.Fatalf("want reset to current price, got %.2f err=%v", bp, err)
	}

	if _, err := Rebase(nil, 0); !errors.Is(err, models.ErrInvariant) {
		t.Fatalf("rebase without lots and price must be an invariant violation, got %v", err)
	}
}

func TestApplySalesClosesAndKeeps(t *testing.T) {
	lots := []models.Lot{
		{ID: 1, AmountBase: 0.4, Price: 70000, Status: models.LotActive},
		{ID: 2, AmountBase: 0.4, Price: 80000, Status: models.LotActive},
	}
	sales := []models.LotSale{
		{LotID: 1, Amount: 0.4, Remaining: 0},
		{LotID: 2, Amount: 0.1, Remaining: 0.3},
	}

	out, err := ApplySales(lots, sales)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Status != models.LotClosed || out[0].AmountBase != 0 {
		t.Fatalf("lot 1 must close, got %+v", out[0])
	}
	if out[1].Status != models.LotActive || !almostEqual(out[1].AmountBase, 0.3) {
		t.Fatalf("lot 2 must keep 0.3, got %+v", out[1])
	}

	// исходный срез не мутируется
	if !almostEqual(lots[0].AmountBase, 0.4) {
		t.Fatalf("ApplySales must not mutate input, got %+v", lots[0])
	}
}

func TestApplySalesUnderflow(t *testing.T) {
	lots := []models.Lot{{ID: 1, AmountBase: 0.1, Price: 70000, Status: models.LotActive}}
	sales := []models.LotSale{{LotID: 1, Amount: 0.2}}

	if _, err := ApplySales(lots, sales); !errors.Is(err, models.ErrInvariant) {
		t.Fatalf("want invariant violation on underflow, got %v", err)
	}
}
