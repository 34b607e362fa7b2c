package models

import "time"

type ManualType string

const (
	ManualDeposit  ManualType = "DEPOSIT"
	ManualWithdraw ManualType = "WITHDRAW"
)

// ManualAdjustment — ручной ввод/вывод капитала (sf_manual, append-only).
// Влияет только на baseline учёта прибыли, никогда на торгуемые балансы.
type ManualAdjustment struct {
	ID        int64
	RuntimeID string
	Type      ManualType
	AmountUSD float64
	Note      string
	CreatedAt time.Time
}

// ManualFlow — агрегат по sf_manual для расчёта baseline.
type ManualFlow struct {
	Deposits  float64
	Withdraws float64
}

func (f ManualFlow) Net() float64 { return f.Deposits - f.Withdraws }
