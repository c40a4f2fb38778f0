package patterns

import (
	"math"
	"testing"
)

func TestFVGBullish(t *testing.T) {
	// Third candle's low clears the first candle's high by 10 pips.
	high := []float64{1.1000, 1.1015, 1.1020}
	low := []float64{1.0990, 1.0995, 1.1010}

	d := NewFVGDetector(5.0)
	out := d.Detect(high, low, pip, 10)

	if len(out) != 1 {
		t.Fatalf("want 1 FVG, got %d", len(out))
	}
	f := out[0]
	if f.Direction != Bullish {
		t.Fatalf("direction want %s, got %s", Bullish, f.Direction)
	}
	if f.Index != 1 {
		t.Fatalf("gap index want 1 (middle candle), got %d", f.Index)
	}
	if f.StartCandleIndex != 0 {
		t.Fatalf("start candle want 0, got %d", f.StartCandleIndex)
	}
	if f.GapLow != 1.1000 || f.GapHigh != 1.1010 {
		t.Fatalf("gap bounds want 1.1000/1.1010, got %v/%v", f.GapLow, f.GapHigh)
	}
	if math.Abs(f.GapSizePips-10) > 1e-6 {
		t.Fatalf("gap size want 10 pips, got %v", f.GapSizePips)
	}
}

func TestFVGBearish(t *testing.T) {
	high := []float64{1.1020, 1.1005, 1.0990}
	low := []float64{1.1010, 1.0995, 1.0980}

	d := NewFVGDetector(5.0)
	out := d.Detect(high, low, pip, 10)

	if len(out) != 1 {
		t.Fatalf("want 1 FVG, got %d", len(out))
	}
	if out[0].Direction != Bearish {
		t.Fatalf("direction want %s, got %s", Bearish, out[0].Direction)
	}
	if out[0].GapLow != 1.0990 || out[0].GapHigh != 1.1010 {
		t.Fatalf("gap bounds want 1.0990/1.1010, got %v/%v", out[0].GapLow, out[0].GapHigh)
	}
}

func TestFVGBelowThreshold(t *testing.T) {
	// 3 pip gap under the 5 pip minimum.
	high := []float64{1.1000, 1.1010, 1.1012}
	low := []float64{1.0990, 1.0995, 1.1003}

	d := NewFVGDetector(5.0)
	if out := d.Detect(high, low, pip, 10); len(out) != 0 {
		t.Fatalf("3 pip gap should be rejected, got %d", len(out))
	}
}

func TestFVGOverlapIsNoGap(t *testing.T) {
	// Third candle overlaps the first: no imbalance.
	high := []float64{1.1000, 1.1010, 1.1015}
	low := []float64{1.0990, 1.0995, 1.0998}

	d := NewFVGDetector(5.0)
	if out := d.Detect(high, low, pip, 10); len(out) != 0 {
		t.Fatalf("overlapping candles should yield no FVG, got %d", len(out))
	}
}

func TestFindLastFVGPicksMostRecent(t *testing.T) {
	// Two bullish gaps; the later one wins.
	high := []float64{1.1000, 1.1015, 1.1020, 1.1035, 1.1040}
	low := []float64{1.0990, 1.0995, 1.1010, 1.1025, 1.1032}

	d := NewFVGDetector(5.0)
	f, ok := d.FindLastFVG(high, low, Bullish, pip, 10)
	if !ok {
		t.Fatal("expected a bullish FVG")
	}
	if f.Index != 3 {
		t.Fatalf("most recent gap index want 3, got %d", f.Index)
	}

	if _, ok := d.FindLastFVG(high, low, Bearish, pip, 10); ok {
		t.Fatal("no bearish FVG should be found")
	}
}
