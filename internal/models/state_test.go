package models

import "testing"

func TestPriceWindowEvictsOldest(t *testing.T) {
	w := NewPriceWindow(3)
	for _, p := range []float64{1, 2, 3, 4} {
		w.Push(p)
	}

	got := w.Values()
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
	if w.Last() != 4 {
		t.Fatalf("want last 4, got %v", w.Last())
	}
}

func TestRestorePriceWindowTrimsLeft(t *testing.T) {
	w := RestorePriceWindow(2, []float64{1, 2, 3, 4})
	if w.Len() != 2 || w.Values()[0] != 3 || w.Last() != 4 {
		t.Fatalf("want tail [3 4], got %v", w.Values())
	}
}

func TestPriceWindowValuesIsACopy(t *testing.T) {
	w := NewPriceWindow(3)
	w.Push(1)

	vals := w.Values()
	vals[0] = 99
	if w.Last() != 1 {
		t.Fatal("Values must return a copy")
	}
}

func TestBalancesTotal(t *testing.T) {
	b := Balances{Base: 0.5, Quote: 1000}
	if got := b.Total(80000); got != 41000 {
		t.Fatalf("want 41000, got %v", got)
	}
}

func TestLotProfitDelta(t *testing.T) {
	l := Lot{Price: 80000}
	if got := l.ProfitDelta(84000); got != 0.05 {
		t.Fatalf("want 0.05, got %v", got)
	}
	if got := (Lot{}).ProfitDelta(84000); got != 0 {
		t.Fatalf("zero entry price must yield zero delta, got %v", got)
	}
}

func TestManualFlowNet(t *testing.T) {
	f := ManualFlow{Deposits: 700, Withdraws: 200}
	if f.Net() != 500 {
		t.Fatalf("want 500, got %v", f.Net())
	}
}
