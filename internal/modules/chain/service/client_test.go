package service

import (
	"math"
	"testing"

	"safeloop_bot/internal/models"
)

func TestWordParsesABIResponse(t *testing.T) {
	// getReserves: два слова резервов + timestamp
	data := "0x" +
		"00000000000000000000000000000000000000000000000000000000000000ff" +
		"0000000000000000000000000000000000000000000000000000000000000001"

	w0, err := word(data, 0)
	if err != nil || w0.Int64() != 255 {
		t.Fatalf("want 255, got %v err=%v", w0, err)
	}
	w1, err := word(data, 1)
	if err != nil || w1.Int64() != 1 {
		t.Fatalf("want 1, got %v err=%v", w1, err)
	}
	if _, err := word(data, 2); err == nil {
		t.Fatal("want error for out-of-range word")
	}
}

func TestWeiToFloat(t *testing.T) {
	v, err := parseHexBig("0xde0b6b3a7640000") // 1e18
	if err != nil {
		t.Fatal(err)
	}
	if got := weiToFloat(v, 18); math.Abs(got-1) > 1e-12 {
		t.Fatalf("want 1.0, got %v", got)
	}
}

func TestAddrParamPadding(t *testing.T) {
	got := addrParam("0xAbCd00000000000000000000000000000000EF12")
	want := "000000000000000000000000abcd00000000000000000000000000000000ef12"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestParseHexBigRejectsGarbage(t *testing.T) {
	if _, err := parseHexBig("0xZZ"); err == nil {
		t.Fatal("want error for bad hex")
	}
}

func TestPaperFill(t *testing.T) {
	sell := paperFill(models.ActionSell, 0.5, 80000)
	if sell.AmountBase != 0.5 || sell.AmountQuote != 40000 {
		t.Fatalf("sell fill mismatch: %+v", sell)
	}

	buy := paperFill(models.ActionBuy, 1000, 80000)
	if buy.AmountQuote != 1000 || math.Abs(buy.AmountBase-0.0125) > 1e-12 {
		t.Fatalf("buy fill mismatch: %+v", buy)
	}
}
