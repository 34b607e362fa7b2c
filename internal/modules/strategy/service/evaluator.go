package service

import "safeloop_bot/internal/models"

// boostedTrigger — порог при подтверждении осциллятором. Исторически он ВЫШЕ
// базового: подтверждённый моментум поднимает планку, а не опускает.
// Поведение сохранено буквально, см. DESIGN.md.
const boostedTrigger = 0.015

// Evaluation — направленный сигнал и эффективный порог для гейта.
type Evaluation struct {
	Delta     float64
	Trigger   float64
	Boosted   bool
	Candidate models.Action // SELL/BUY/HOLD без учёта гардов
}

// Evaluate строит сигнал из цены, базовой точки и моментума.
// warm=false (окно < 26) оставляет базовый порог без буста.
func Evaluate(price, basePoint float64, m Momentum, warm bool, threshold float64) Evaluation {
	ev := Evaluation{Trigger: threshold, Candidate: models.ActionHold}
	if basePoint <= 0 {
		return ev
	}

	ev.Delta = (price - basePoint) / basePoint

	if warm && m.Confirms(ev.Delta) {
		ev.Trigger = boostedTrigger
		ev.Boosted = true
	}

	switch {
	case ev.Delta > 0 && ev.Delta >= ev.Trigger:
		ev.Candidate = models.ActionSell
	case ev.Delta < 0 && -ev.Delta >= ev.Trigger:
		ev.Candidate = models.ActionBuy
	}
	return ev
}
