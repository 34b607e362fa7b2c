package service

const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// Momentum — значение осциллятора и его сигнальная линия на последнем тике.
type Momentum struct {
	Value  float64 // EMA12 - EMA26, последняя точка
	Signal float64 // EMA9 по истории осциллятора
}

// MACD считает осциллятор по окну цен.
// Поведение при недогретой истории — штатное, не ошибка:
//
//	len < 26          -> (0, 0), индикатор не прогрет
//	история MACD < 9  -> (value, 0), сигнальной линии ещё нет
func MACD(prices []float64) Momentum {
	if len(prices) < macdSlowPeriod {
		return Momentum{}
	}

	emaFast := calcEMA(prices, macdFastPeriod)
	emaSlow := calcEMA(prices, macdSlowPeriod)
	if len(emaFast) == 0 || len(emaSlow) == 0 {
		return Momentum{}
	}

	value := emaFast[len(emaFast)-1] - emaSlow[len(emaSlow)-1]

	// История осциллятора: хвост EMA12, выровненный по длине EMA26.
	tail := emaFast[len(emaFast)-len(emaSlow):]
	hist := make([]float64, len(emaSlow))
	for i := range emaSlow {
		hist[i] = tail[i] - emaSlow[i]
	}

	if len(hist) < macdSignalPeriod {
		return Momentum{Value: value}
	}

	sig := calcEMA(hist, macdSignalPeriod)
	if len(sig) == 0 {
		return Momentum{Value: value}
	}
	return Momentum{Value: value, Signal: sig[len(sig)-1]}
}

// Confirms — подтверждает ли осциллятор направление дельты:
// вверх при value > signal и delta > 0, вниз при value < signal и delta < 0.
func (m Momentum) Confirms(delta float64) bool {
	return (m.Value > m.Signal && delta > 0) || (m.Value < m.Signal && delta < 0)
}
