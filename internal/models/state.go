package models

import "time"

// Balances — снапшот кошелька: base (BTCB) и quote (USDT).
type Balances struct {
	Base  float64
	Quote float64
}

func (b Balances) Total(price float64) float64 {
	return b.Quote + b.Base*price
}

// SystemState — единственная строка sf_system на runtime id.
// Загружается на старте, мутируется каждый цикл, персистится одной транзакцией.
type SystemState struct {
	RuntimeID string

	// Референсная цена для дельты: средневзвешенная цена входа открытых лотов.
	BasePoint float64

	StartBalances   Balances
	CurrentBalances Balances

	StartValue  float64
	TotalProfit float64

	// Момент последнего успешного свапа; кулдаун считается от него.
	LastSwap time.Time

	Prices *PriceWindow

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceWindow — ограниченная очередь последних цен (старое вытесняется первым).
// Хранится JSON-колонкой в sf_system, в памяти живёт как явный тип,
// а не как ad-hoc массив.
type PriceWindow struct {
	cap    int
	values []float64
}

func NewPriceWindow(capacity int) *PriceWindow {
	if capacity <= 0 {
		capacity = 40
	}
	return &PriceWindow{cap: capacity, values: make([]float64, 0, capacity)}
}

// RestorePriceWindow восстанавливает окно из персистентного снапшота,
// обрезая лишнее слева, если capacity уменьшили в конфиге.
func RestorePriceWindow(capacity int, values []float64) *PriceWindow {
	w := NewPriceWindow(capacity)
	for _, v := range values {
		w.Push(v)
	}
	return w
}

func (w *PriceWindow) Push(price float64) {
	if len(w.values) >= w.cap {
		w.values = w.values[1:]
	}
	w.values = append(w.values, price)
}

func (w *PriceWindow) Len() int      { return len(w.values) }
func (w *PriceWindow) Cap() int      { return w.cap }
func (w *PriceWindow) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

func (w *PriceWindow) Last() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.values[len(w.values)-1]
}
