package patterns

import (
	"math"
	"testing"
)

const pip = 0.0001

type bar struct{ o, h, l, c float64 }

func ohlc(bars []bar) (open, high, low, close []float64) {
	for _, b := range bars {
		open = append(open, b.o)
		high = append(high, b.h)
		low = append(low, b.l)
		close = append(close, b.c)
	}
	return
}

// flat produces a zero-range candle that no detector can match.
func flat(p float64) bar { return bar{p, p, p, p} }

func TestPinBarBullish(t *testing.T) {
	// 5 pip body, 50 pip lower wick, 1 pip upper wick.
	open, high, low, close := ohlc([]bar{
		flat(1.1),
		flat(1.1),
		{1.1000, 1.1006, 1.0950, 1.1005},
	})

	d := NewPinBarDetector(2.0, 0.35, 10.0)
	out := d.Detect(open, high, low, close, pip, 10)

	if len(out) != 1 {
		t.Fatalf("want 1 pin bar, got %d", len(out))
	}
	p := out[0]
	if p.Type != PinBarBullish {
		t.Fatalf("type want %s, got %s", PinBarBullish, p.Type)
	}
	if p.Index != 2 {
		t.Fatalf("index want 2, got %d", p.Index)
	}
	if p.PriceLevel != 1.0950 {
		t.Fatalf("key level should be the low, got %v", p.PriceLevel)
	}
	// shadow/body ratio 10 saturates the strength scale
	if p.Strength != 1.0 {
		t.Fatalf("strength want 1.0, got %v", p.Strength)
	}
}

func TestPinBarBearish(t *testing.T) {
	open, high, low, close := ohlc([]bar{
		flat(1.1),
		flat(1.1),
		{1.1005, 1.1055, 1.0999, 1.1000},
	})

	d := NewPinBarDetector(2.0, 0.35, 10.0)
	out := d.Detect(open, high, low, close, pip, 10)

	if len(out) != 1 {
		t.Fatalf("want 1 pin bar, got %d", len(out))
	}
	if out[0].Type != PinBarBearish {
		t.Fatalf("type want %s, got %s", PinBarBearish, out[0].Type)
	}
	if out[0].PriceLevel != 1.1055 {
		t.Fatalf("key level should be the high, got %v", out[0].PriceLevel)
	}
}

func TestPinBarRejectsLargeBody(t *testing.T) {
	// 40 pip body in a 60 pip range: body ratio 0.66 exceeds the cap.
	open, high, low, close := ohlc([]bar{
		flat(1.1),
		flat(1.1),
		{1.1000, 1.1050, 1.0990, 1.1040},
	})

	d := NewPinBarDetector(2.0, 0.35, 10.0)
	if out := d.Detect(open, high, low, close, pip, 10); len(out) != 0 {
		t.Fatalf("large body should be rejected, got %d patterns", len(out))
	}
}

func TestPinBarRejectsSmallRange(t *testing.T) {
	// Correct shape but only 5.6 pips of range.
	open, high, low, close := ohlc([]bar{
		flat(1.1),
		flat(1.1),
		{1.10000, 1.10006, 1.09950, 1.10005},
	})

	d := NewPinBarDetector(2.0, 0.35, 10.0)
	if out := d.Detect(open, high, low, close, pip*10, 10); len(out) != 0 {
		t.Fatalf("small range should be rejected, got %d patterns", len(out))
	}
}

func TestPinBarStrengthPartial(t *testing.T) {
	// 10 pip body, 30 pip lower wick: shadow/body ratio 3 on a min
	// ratio of 2 gives strength 3/4.
	open, high, low, close := ohlc([]bar{
		flat(1.1),
		flat(1.1),
		{1.1000, 1.1010, 1.0970, 1.1010},
	})

	d := NewPinBarDetector(2.0, 0.35, 10.0)
	out := d.Detect(open, high, low, close, pip, 10)
	if len(out) != 1 {
		t.Fatalf("want 1 pin bar, got %d", len(out))
	}
	if math.Abs(out[0].Strength-0.75) > 1e-9 {
		t.Fatalf("strength want 0.75, got %v", out[0].Strength)
	}
}

func TestFindLastPinBarPicksMostRecent(t *testing.T) {
	open, high, low, close := ohlc([]bar{
		flat(1.1),
		{1.1000, 1.1006, 1.0950, 1.1005},
		flat(1.1),
		flat(1.1),
		{1.1000, 1.1006, 1.0950, 1.1005},
		flat(1.1),
	})

	d := NewPinBarDetector(2.0, 0.35, 10.0)
	p, ok := d.FindLastPinBar(open, high, low, close, Bullish, pip, 10)
	if !ok {
		t.Fatal("expected a bullish pin bar")
	}
	if p.Index != 4 {
		t.Fatalf("want most recent pin bar at index 4, got %d", p.Index)
	}

	if _, ok := d.FindLastPinBar(open, high, low, close, Bearish, pip, 10); ok {
		t.Fatal("no bearish pin bar should be found")
	}
}
