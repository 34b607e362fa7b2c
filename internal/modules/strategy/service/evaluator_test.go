package service

import (
	"testing"

	"safeloop_bot/internal/models"
)

func TestEvaluateSellCandidate(t *testing.T) {
	ev := Evaluate(84000, 80000, Momentum{}, false, 0.01)

	if !almostEqual(ev.Delta, 0.05) {
		t.Fatalf("want delta 0.05, got %.6f", ev.Delta)
	}
	if ev.Candidate != models.ActionSell {
		t.Fatalf("want SELL candidate, got %s", ev.Candidate)
	}
	if ev.Boosted || !almostEqual(ev.Trigger, 0.01) {
		t.Fatalf("cold momentum must keep base trigger, got %+v", ev)
	}
}

func TestEvaluateBuyCandidate(t *testing.T) {
	ev := Evaluate(79000, 80000, Momentum{}, false, 0.01)

	if ev.Delta >= 0 {
		t.Fatalf("want negative delta, got %.6f", ev.Delta)
	}
	if ev.Candidate != models.ActionBuy {
		t.Fatalf("want BUY candidate, got %s", ev.Candidate)
	}
}

func TestEvaluateBoostRaisesTrigger(t *testing.T) {
	// Подтверждённый моментум поднимает планку: дельта 1.2% прошла бы
	// базовый порог 1%, но против бустнутого 1.5% — HOLD.
	m := Momentum{Value: 5, Signal: 1}
	ev := Evaluate(80960, 80000, m, true, 0.01)

	if !ev.Boosted || !almostEqual(ev.Trigger, boostedTrigger) {
		t.Fatalf("want boosted trigger %.3f, got %+v", boostedTrigger, ev)
	}
	if ev.Candidate != models.ActionHold {
		t.Fatalf("delta %.4f below boosted trigger must hold, got %s", ev.Delta, ev.Candidate)
	}
}

func TestEvaluateColdWindowNeverBoosts(t *testing.T) {
	m := Momentum{Value: 5, Signal: 1}
	ev := Evaluate(84000, 80000, m, false, 0.01)

	if ev.Boosted {
		t.Fatal("boost must not fire before the window is warm")
	}
	if ev.Candidate != models.ActionSell {
		t.Fatalf("want SELL on base trigger, got %s", ev.Candidate)
	}
}

func TestEvaluateWithoutBasePoint(t *testing.T) {
	ev := Evaluate(84000, 0, Momentum{}, true, 0.01)
	if ev.Candidate != models.ActionHold || ev.Delta != 0 {
		t.Fatalf("missing base point must produce neutral evaluation, got %+v", ev)
	}
}
