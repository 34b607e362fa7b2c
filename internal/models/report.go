package models

import "time"

type Action string

const (
	ActionHold  Action = "HOLD"
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionError Action = "ERROR"
)

// CycleReport — эфемерный итог одного тика: что видели и что решили.
// Живёт один цикл: уходит в нотифайер и строкой в loop_state_log.
type CycleReport struct {
	RunID     string // uuid процесса, для склейки строк лога по рестартам
	Action    Action
	Price     float64
	Balances  Balances
	BasePoint float64
	Delta     float64

	Momentum       float64
	MomentumSignal float64
	Boosted        bool
	Trigger        float64

	AmountBase float64 // сколько base затронул бы/затронул свап
	AmountUSD  float64

	Profit   float64
	Drawdown float64

	DidSwap bool
	Reasons []string // все непрошедшие гарды, по порядку
	Details string

	Time time.Time
}

func (r CycleReport) DeltaPercent() float64 { return r.Delta * 100 }
