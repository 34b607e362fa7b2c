package service

import "safeloop_bot/internal/models"

// ComputeProfit — реализованный+нереализованный профит против baseline.
// Ручные вводы/выводы складываются в baseline, а не в балансы, поэтому
// депозит не выглядит торговой прибылью, а вывод — убытком.
func ComputeProfit(start, current models.Balances, basePoint, netManualFlow float64) float64 {
	startValue := start.Base*basePoint + start.Quote + netManualFlow
	currentValue := current.Base*basePoint + current.Quote
	return currentValue - startValue
}

// Drawdown — относительная просадка портфеля от стартовой стоимости.
func Drawdown(startValue, currentTotal float64) float64 {
	if startValue <= 0 {
		return 0
	}
	return (startValue - currentTotal) / startValue
}
