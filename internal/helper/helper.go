package helper

import (
	"math"
)

// FixedTo — округление до digits знаков для сумм и отчётов (NaN/Inf -> 0).
func FixedTo(val float64, digits int) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	p := math.Pow(10, float64(digits))
	return math.Round(val*p) / p
}

// RoundDownToTick прижимает значение вниз к шагу tick — суммы свапа
// перед отправкой исполнителю.
func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-12)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-12)
	return steps * tick
}
