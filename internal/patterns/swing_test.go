package patterns

import "testing"

func TestSwingDetectSinglePeak(t *testing.T) {
	highs := []float64{1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}
	lows := make([]float64, len(highs))
	for i, h := range highs {
		lows[i] = h - 0.5
	}

	d := NewSwingDetector(2)
	swingHighs, swingLows := d.Detect(highs, lows)

	if len(swingHighs) != 1 {
		t.Fatalf("want 1 swing high, got %d", len(swingHighs))
	}
	if swingHighs[0].Index != 5 {
		t.Fatalf("swing high index want 5, got %d", swingHighs[0].Index)
	}
	if swingHighs[0].PriceLevel != 6 {
		t.Fatalf("swing high price want 6, got %v", swingHighs[0].PriceLevel)
	}
	if len(swingLows) != 0 {
		t.Fatalf("want no swing lows on a peak, got %d", len(swingLows))
	}
}

func TestSwingDetectValley(t *testing.T) {
	lows := []float64{6, 5, 4, 3, 2, 1, 2, 3, 4, 5, 6}
	highs := make([]float64, len(lows))
	for i, l := range lows {
		highs[i] = l + 0.5
	}

	d := NewSwingDetector(2)
	swingHighs, swingLows := d.Detect(highs, lows)

	if len(swingLows) != 1 {
		t.Fatalf("want 1 swing low, got %d", len(swingLows))
	}
	if swingLows[0].Index != 5 {
		t.Fatalf("swing low index want 5, got %d", swingLows[0].Index)
	}
	if len(swingHighs) != 0 {
		t.Fatalf("want no swing highs in a valley, got %d", len(swingHighs))
	}
}

func TestSwingDetectMonotonic(t *testing.T) {
	highs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	lows := []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5}

	d := NewSwingDetector(2)
	swingHighs, swingLows := d.Detect(highs, lows)

	if len(swingHighs) != 0 || len(swingLows) != 0 {
		t.Fatalf("monotonic series should have no swings, got %d highs %d lows",
			len(swingHighs), len(swingLows))
	}
}

func TestSwingDetectBoundaryExcluded(t *testing.T) {
	// Peak at index 1 sits inside the lookback border and must not be
	// classified.
	highs := []float64{1, 9, 1, 1, 1}
	lows := []float64{0.5, 8.5, 0.5, 0.5, 0.5}

	d := NewSwingDetector(2)
	swingHighs, _ := d.Detect(highs, lows)

	if len(swingHighs) != 0 {
		t.Fatalf("boundary peak should be excluded, got %d swing highs", len(swingHighs))
	}
}

func TestSwingEqualNeighborRejected(t *testing.T) {
	// Plateau: equal highs never qualify, comparison is strict.
	highs := []float64{1, 2, 5, 5, 5, 2, 1, 1, 1}
	lows := []float64{0, 1, 4, 4, 4, 1, 0, 0, 0}

	d := NewSwingDetector(2)
	swingHighs, _ := d.Detect(highs, lows)

	if len(swingHighs) != 0 {
		t.Fatalf("plateau should yield no swing highs, got %d", len(swingHighs))
	}
}

func TestFindNearestSwing(t *testing.T) {
	// Two valleys: index 5 at 1.0 and index 13 at 2.0.
	lows := []float64{6, 5, 4, 3, 2, 1, 2, 3, 4, 5, 4, 3, 2.5, 2, 2.5, 3, 4, 5, 6}
	highs := make([]float64, len(lows))
	for i, l := range lows {
		highs[i] = l + 0.5
	}

	d := NewSwingDetector(2)

	// For a buy at 5.0 the nearest support below is the shallower valley.
	p, ok := d.FindNearestSwing(highs, lows, true, 5.0)
	if !ok {
		t.Fatal("expected a swing below price")
	}
	if p.PriceLevel != 2.0 {
		t.Fatalf("nearest swing low want 2.0, got %v", p.PriceLevel)
	}

	// Nothing above 10 for a sell.
	if _, ok := d.FindNearestSwing(highs, lows, false, 10.0); ok {
		t.Fatal("expected no swing high above 10.0")
	}
}
