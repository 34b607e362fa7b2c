package runner

import (
	"context"
	"fmt"
	"time"

	"safeloop_bot/internal/helper"
	"safeloop_bot/internal/models"
	storage "safeloop_bot/internal/modules/storage/service"
	strategy "safeloop_bot/internal/modules/strategy/service"
	"safeloop_bot/pkg/logger"
)

// Bind отдаёт раннеру прогретый стейт. Вызывается один раз до Run.
func (r *Runner) Bind(state *models.SystemState) { r.state = state }

// runCycle — один тик ребаланса: чтения, сигнал, гейт, исполнение, персист.
// Все чтения идут до первой мутации стейта: обрыв по битым данным
// оставляет стейт ровно таким, каким его увидел предыдущий тик.
func (r *Runner) runCycle(ctx context.Context) (models.CycleReport, error) {
	now := time.Now().UTC()
	report := models.CycleReport{RunID: r.runID, Action: models.ActionHold, Time: now}

	state := r.state
	if state == nil {
		return report, fmt.Errorf("%w: runner started without warmed state", models.ErrInvariant)
	}

	r.chain.KeepGasPumping(ctx)

	price := r.chain.PoolPrice(ctx)
	if price <= 0 {
		if streamed := r.chain.LastStreamedPrice(); streamed > 0 {
			logger.Warn("poll price unavailable, falling back to streamed %.2f", streamed)
			price = streamed
		}
	}
	if price <= 0 {
		return report, fmt.Errorf("%w: pool price unavailable", models.ErrTransientData)
	}
	report.Price = price

	balances, err := r.chain.Balances(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %v", models.ErrTransientData, err)
	}
	manual, err := r.store.ManualFlow(ctx, state.RuntimeID)
	if err != nil {
		return report, fmt.Errorf("%w: %v", models.ErrTransientData, err)
	}
	lots, err := r.store.ActiveLots(ctx, state.RuntimeID)
	if err != nil {
		return report, fmt.Errorf("%w: %v", models.ErrTransientData, err)
	}

	state.Prices.Push(price)
	state.CurrentBalances = balances
	report.Balances = balances

	total := balances.Total(price)
	startInit, baseInit := false, false
	if state.StartValue <= 0 {
		state.StartValue = total
		startInit = true
	}
	if state.BasePoint <= 0 {
		state.BasePoint = price
		baseInit = true
	}
	report.BasePoint = state.BasePoint

	drawdown := strategy.Drawdown(state.StartValue, total)
	report.Drawdown = drawdown

	warm := state.Prices.Len() >= 26 // хватает точек на медленную EMA
	var momentum strategy.Momentum
	if warm {
		momentum = strategy.MACD(state.Prices.Values())
	}
	report.Momentum = momentum.Value
	report.MomentumSignal = momentum.Signal

	ev := strategy.Evaluate(price, state.BasePoint, momentum, warm, r.cfg.Strategy.Threshold)
	report.Delta = ev.Delta
	report.Trigger = ev.Trigger
	report.Boosted = ev.Boosted

	// направление — по знаку дельты; гарды решают, исполнять ли
	direction := models.ActionHold
	if ev.Delta > 0 {
		direction = models.ActionSell
	}
	if ev.Delta < 0 {
		direction = models.ActionBuy
	}

	var (
		amountBase float64
		amountUSD  float64
		sales      []models.LotSale
		noProfit   bool
	)
	switch direction {
	case models.ActionSell:
		sales, amountBase = strategy.SelectProfitable(
			lots, price, r.cfg.Strategy.Threshold, balances.Base*r.cfg.Strategy.SwapPortion)
		amountUSD = amountBase * price
		noProfit = amountBase <= 0
	case models.ActionBuy:
		amountUSD = helper.FixedTo(balances.Quote*r.cfg.Strategy.SwapPortion, 2)
		amountBase = amountUSD / price
	}
	report.AmountBase = amountBase
	report.AmountUSD = amountUSD

	gate := strategy.GateInput{
		StartValueInitialized: startInit,
		BasePointInitialized:  baseInit,
		Drawdown:              drawdown,
		DrawdownLimit:         r.cfg.Strategy.DrawdownLimit,
		Now:                   now,
		LastSwap:              state.LastSwap,
		Cooldown:              r.cfg.Strategy.CheckInterval,
		Candidate:             direction,
		Eval:                  ev,
		Price:                 price,
		Balances:              balances,
		AmountUSD:             amountUSD,
		MinSwapUSD:            r.cfg.Strategy.MinSwapUSD,
		MaxSwapUSD:            r.cfg.Strategy.MaxSwapUSD,
		NoProfitableLots:      direction == models.ActionSell && noProfit,
	}
	report.Reasons = gate.Evaluate()

	var (
		mutation *storage.SwapMutation
		attempt  *storage.SwapAttempt
	)
	if len(report.Reasons) == 0 {
		mutation, attempt, err = r.executeSwap(ctx, &report, state, direction, amountBase, amountUSD, price, lots, sales)
		if err != nil {
			// порча леджера: обрываем тик до персиста
			return report, err
		}
	}

	report.Profit = strategy.ComputeProfit(state.StartBalances, state.CurrentBalances, state.BasePoint, manual.Net())
	state.TotalProfit = report.Profit

	if err := r.store.ApplyCycle(ctx, state, report, mutation, attempt); err != nil {
		return report, err
	}
	return report, nil
}

// executeSwap исполняет решение и мутирует стейт только по факту филла.
// Ошибка исполнения — деградация тика (attempt в tx-лог), не ошибка цикла.
func (r *Runner) executeSwap(
	ctx context.Context,
	report *models.CycleReport,
	state *models.SystemState,
	direction models.Action,
	amountBase, amountUSD, price float64,
	lots []models.Lot,
	sales []models.LotSale,
) (*storage.SwapMutation, *storage.SwapAttempt, error) {
	// SELL меряется в base, BUY — в quote
	amountIn := amountBase
	if direction == models.ActionBuy {
		amountIn = amountUSD
	}

	fill, err := r.chain.ExecuteSwap(ctx, direction, amountIn, price)
	if err != nil {
		logger.Error("swap execution failed: %v", err)
		report.Details = fmt.Sprintf("swap execution failed: %v", err)
		return nil, &storage.SwapAttempt{
			Direction:  direction,
			AmountBase: amountBase,
			AmountUSD:  amountUSD,
			Price:      price,
			Notes:      err.Error(),
		}, nil
	}

	state.LastSwap = report.Time
	report.Action = direction
	report.DidSwap = true
	report.AmountBase = fill.AmountBase
	report.AmountUSD = fill.AmountQuote

	mutation := &storage.SwapMutation{
		Direction:  direction,
		AmountBase: fill.AmountBase,
		AmountUSD:  fill.AmountQuote,
		Price:      price,
	}

	switch direction {
	case models.ActionSell:
		remaining, err := strategy.ApplySales(lots, sales)
		if err != nil {
			return nil, nil, err
		}
		bp, err := strategy.Rebase(remaining, price)
		if err != nil {
			return nil, nil, err
		}
		state.BasePoint = bp
		mutation.Sales = sales
		report.Details = fmt.Sprintf("Sold %.6f BTC for %.2f USDT, base point -> %.2f",
			fill.AmountBase, fill.AmountQuote, bp)

	case models.ActionBuy:
		// base point = средневзвешенный вход по активным лотам, включая свежий
		withNew := append(append([]models.Lot(nil), lots...), models.Lot{
			AmountBase: fill.AmountBase,
			Price:      price,
			Status:     models.LotActive,
		})
		bp, err := strategy.Rebase(withNew, price)
		if err != nil {
			return nil, nil, err
		}
		state.BasePoint = bp
		report.Details = fmt.Sprintf("Bought %.6f BTC for %.2f USDT, base point -> %.2f",
			fill.AmountBase, fill.AmountQuote, bp)
	}
	report.BasePoint = state.BasePoint

	return mutation, nil, nil
}
