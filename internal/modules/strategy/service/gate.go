package service

import (
	"fmt"
	"time"

	"safeloop_bot/internal/models"
)

// Гейт — одна точка решения за цикл. Концептуально это автомат
// UNINITIALIZED -> EVALUATING -> EXECUTING -> SETTLED, но внутри цикла
// достаточно упорядоченного прохода по гардам: свап разрешён, только если
// не сработал ни один. Причины копятся все, не только первая — так задумано,
// отчёт в Telegram должен объяснять решение целиком.

type GateInput struct {
	// true, когда значение только что проинициализировали в этом цикле —
	// первая установка base point подавляет торговлю на этом тике.
	StartValueInitialized bool
	BasePointInitialized  bool

	Drawdown      float64
	DrawdownLimit float64

	Now      time.Time
	LastSwap time.Time
	Cooldown time.Duration

	Candidate models.Action
	Eval      Evaluation

	Price    float64
	Balances models.Balances

	AmountUSD  float64
	MinSwapUSD float64
	MaxSwapUSD float64

	// Продаём, а профитных лотов нет — деградация, не ошибка.
	NoProfitableLots bool
}

// Evaluate прогоняет гарды по порядку и возвращает причины отказа.
// Пустой срез = все гарды пройдены, можно исполнять.
func (in GateInput) Evaluate() []string {
	var reasons []string

	if in.StartValueInitialized {
		reasons = append(reasons, "startValue not set, initializing...")
	}
	if in.BasePointInitialized {
		reasons = append(reasons, "basePoint not set, initializing...")
	}

	if in.DrawdownLimit > 0 && in.Drawdown >= in.DrawdownLimit {
		reasons = append(reasons, fmt.Sprintf("drawdown %.2f%% >= limit", in.Drawdown*100))
	}

	if in.Now.Sub(in.LastSwap) < in.Cooldown {
		reasons = append(reasons, fmt.Sprintf("checkInterval not passed (%.0f min)", in.Cooldown.Minutes()))
	}

	// Имбаланс асимметричен намеренно: пол 5% проверяется только на продаже,
	// на покупке достаточно ненулевого quote. См. DESIGN.md.
	if total := in.Balances.Total(in.Price); total > 0 {
		quoteRatio := in.Balances.Quote / total
		if in.Candidate == models.ActionSell && quoteRatio < 0.05 {
			reasons = append(reasons, fmt.Sprintf("portfolio imbalance: USDT ratio %.1f%%", quoteRatio*100))
		}
		if in.Candidate == models.ActionBuy && in.Balances.Quote <= 0 {
			reasons = append(reasons, "portfolio imbalance: no USDT to buy")
		}
	}

	delta := in.Eval.Delta
	if abs(delta) < in.Eval.Trigger {
		reasons = append(reasons, fmt.Sprintf("delta %.3f%% < trigger %.2f%%", delta*100, in.Eval.Trigger*100))
	}

	if in.NoProfitableLots {
		reasons = append(reasons, "no profitable position to sell")
	}

	if in.AmountUSD < in.MinSwapUSD {
		reasons = append(reasons, fmt.Sprintf("amount %.2f < minSwapUSD", in.AmountUSD))
	}
	if in.AmountUSD > in.MaxSwapUSD {
		reasons = append(reasons, fmt.Sprintf("amount %.2f > maxSwapUSD", in.AmountUSD))
	}

	if (in.Candidate == models.ActionSell && in.Balances.Base <= 0) ||
		(in.Candidate == models.ActionBuy && in.Balances.Quote <= 0) {
		asset := "USDT"
		if in.Candidate == models.ActionSell {
			asset = "BTCB"
		}
		reasons = append(reasons, fmt.Sprintf("not enough %s to swap", asset))
	}

	return reasons
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
