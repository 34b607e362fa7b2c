package models

import "time"

type LotStatus string

const (
	LotActive LotStatus = "active"
	LotClosed LotStatus = "closed"
)

// Lot — запись покупки в sf_assets. Никогда не удаляется: при продаже
// количество уменьшается, статус переходит active -> closed (и только так).
type Lot struct {
	ID         int64
	RuntimeID  string
	AmountBase float64 // остаток BTC в лоте
	Price      float64 // цена входа
	AmountUSD  float64 // потрачено quote при покупке
	Status     LotStatus
	CreatedAt  time.Time
}

// ProfitDelta — относительный профит лота при цене priceNow.
func (l Lot) ProfitDelta(priceNow float64) float64 {
	if l.Price <= 0 {
		return 0
	}
	return (priceNow - l.Price) / l.Price
}

// LotSale — сколько списать с конкретного лота при продаже.
type LotSale struct {
	LotID     int64
	Amount    float64
	Remaining float64 // остаток после списания; 0 => лот закрывается
}
