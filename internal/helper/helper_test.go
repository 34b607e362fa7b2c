package helper

import (
	"math"
	"testing"
)

func TestFixedTo(t *testing.T) {
	if got := FixedTo(1.23456, 2); got != 1.23 {
		t.Fatalf("want 1.23, got %v", got)
	}
	if got := FixedTo(math.NaN(), 2); got != 0 {
		t.Fatalf("NaN must collapse to 0, got %v", got)
	}
	if got := FixedTo(math.Inf(1), 2); got != 0 {
		t.Fatalf("Inf must collapse to 0, got %v", got)
	}
}

func TestRoundToTick(t *testing.T) {
	if got := RoundDownToTick(0.123456789, 1e-6); math.Abs(got-0.123456) > 1e-12 {
		t.Fatalf("want 0.123456, got %.9f", got)
	}
	if got := RoundUpToTick(0.1230001, 1e-3); math.Abs(got-0.124) > 1e-12 {
		t.Fatalf("want 0.124, got %.9f", got)
	}
	if got := RoundDownToTick(5, 0); got != 5 {
		t.Fatalf("zero tick must be a no-op, got %v", got)
	}
}
