package service

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalcEMAShortSeries(t *testing.T) {
	if got := calcEMA([]float64{1, 2}, 3); got != nil {
		t.Fatalf("want nil for short series, got %v", got)
	}
}

func TestCalcEMALinearRamp(t *testing.T) {
	// Для period=3 (alpha=0.5) на серии с шагом 1 EMA ровно на 1 отстаёт
	// от цены: seed = SMA(1,2,3) = 2, дальше 0.5*v + 0.5*(v-2) = v-1.
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := calcEMA(values, 3)

	if len(got) != len(values)-3+1 {
		t.Fatalf("want %d points, got %d", len(values)-3+1, len(got))
	}
	for i, v := range got {
		want := values[i+2] - 1
		if !almostEqual(v, want) {
			t.Fatalf("point %d: want %.6f, got %.6f", i, want, v)
		}
	}
}

func TestCalcEMAConvergesWithStreaming(t *testing.T) {
	// Посев разный (SMA против первой цены), но на длинной константной
	// серии оба сходятся к самой константе.
	values := make([]float64, 100)
	for i := range values {
		values[i] = 42.5
	}

	series := calcEMA(values, 12)
	stream := newEMA(12)
	for _, v := range values {
		stream.Update(v)
	}

	if !stream.Ready() {
		t.Fatal("streaming EMA must be warmed up after 100 points")
	}
	if !almostEqual(series[len(series)-1], 42.5) || !almostEqual(stream.Value(), 42.5) {
		t.Fatalf("want both EMAs at 42.5, got series=%.6f stream=%.6f",
			series[len(series)-1], stream.Value())
	}
}

func TestMACDColdWindow(t *testing.T) {
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 80000
	}
	if m := MACD(prices); m.Value != 0 || m.Signal != 0 {
		t.Fatalf("want zero momentum below 26 points, got %+v", m)
	}
}

func TestMACDFlatSeries(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 80000
	}
	m := MACD(prices)
	if !almostEqual(m.Value, 0) || !almostEqual(m.Signal, 0) {
		t.Fatalf("flat series must produce zero momentum, got %+v", m)
	}
}

func TestMACDShortHistoryHasNoSignal(t *testing.T) {
	// 26 <= len < 34: осциллятор уже есть, истории под сигнальную EMA9
	// ещё нет — (value, 0), штатная деградация.
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 80000 + float64(i)*50
	}

	m := MACD(prices)
	if m.Value <= 0 {
		t.Fatalf("want positive momentum on uptrend, got %.6f", m.Value)
	}
	if m.Signal != 0 {
		t.Fatalf("signal must stay 0 until 9 momentum points, got %.6f", m.Signal)
	}
}

func TestMACDAcceleratingRampConfirmsUptrend(t *testing.T) {
	// Ускоряющийся рост: осциллятор растёт и строго опережает свою
	// сигнальную линию, подтверждение работает.
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 80000 + float64(i*i)
	}

	m := MACD(prices)
	if m.Value <= 0 {
		t.Fatalf("want positive momentum on uptrend, got %.6f", m.Value)
	}
	if m.Value <= m.Signal {
		t.Fatalf("momentum %.6f must strictly lead signal %.6f when the trend accelerates", m.Value, m.Signal)
	}
	if !m.Confirms(0.02) {
		t.Fatal("accelerating uptrend must confirm positive delta")
	}
	if m.Confirms(-0.02) {
		t.Fatal("accelerating uptrend must not confirm negative delta")
	}
}

func TestMACDLinearRampTiesWithSignal(t *testing.T) {
	// Идеально линейный рост — вырожденный случай: осциллятор выходит на
	// константу, EMA9 догоняет его точно, подтверждения нет ни в одну
	// сторону (Confirms строгий, как исторически).
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 80000 + float64(i)*50
	}

	m := MACD(prices)
	if !almostEqual(m.Value, m.Signal) {
		t.Fatalf("steady ramp must tie value and signal, got %.9f vs %.9f", m.Value, m.Signal)
	}
	if m.Confirms(0.02) || m.Confirms(-0.02) {
		t.Fatal("an exact tie must not confirm either direction")
	}
}
