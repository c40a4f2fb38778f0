package levels

import (
	"math"
	"testing"
	"time"

	"sltp-engine/pkg/types"
)

const pip = 0.0001

func defaultDetector() *Detector {
	return NewDetector(types.DetectorConfig{
		SwingLookback:      2,
		PinBarShadowRatio:  2.0,
		PinBarMaxBodyRatio: 0.35,
		PinBarMinRangePips: 10.0,
		LevelTolerancePips: 10.0,
		ATRPeriod:          14,
		PatternLookback:    50,
	})
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Strength
	}{
		{0, Weak},
		{29.9, Weak},
		{30, Moderate},
		{59.9, Moderate},
		{60, Strong},
		{79.9, Strong},
		{80, VeryStrong},
		{100, VeryStrong},
	}
	for _, c := range cases {
		if got := classify(c.score); got != c.want {
			t.Errorf("classify(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestMergeSimilarFirstMemberTolerance(t *testing.T) {
	d := defaultDetector()

	// 1.1008 joins the group anchored at 1.1000; 1.1016 is within
	// tolerance of 1.1008 but not of the anchor, so it starts a new group.
	all := []SRLevel{
		{Price: 1.1000, Type: TypeSwingLow, IsSupport: true, Touches: 1},
		{Price: 1.1008, Type: TypeRoundNumber, IsSupport: true, Touches: 1},
		{Price: 1.1016, Type: TypeSwingLow, IsSupport: true, Touches: 1},
	}

	merged := d.mergeSimilar(all, pip)
	if len(merged) != 2 {
		t.Fatalf("want 2 merged levels, got %d", len(merged))
	}
	if math.Abs(merged[0].Price-1.1004) > 1e-9 {
		t.Fatalf("merged price want 1.1004, got %v", merged[0].Price)
	}
	if merged[0].Touches != 2 {
		t.Fatalf("merged touches want 2, got %d", merged[0].Touches)
	}
	// Swing type outranks round number as group representative.
	if merged[0].Type != TypeSwingLow {
		t.Fatalf("merged type want %s, got %s", TypeSwingLow, merged[0].Type)
	}
	if merged[1].Price != 1.1016 {
		t.Fatalf("second group price want 1.1016, got %v", merged[1].Price)
	}
}

func TestMergeSimilarIdempotent(t *testing.T) {
	d := defaultDetector()

	all := []SRLevel{
		{Price: 1.1000, Type: TypeSwingLow, IsSupport: true, Touches: 1},
		{Price: 1.1008, Type: TypeRoundNumber, IsSupport: true, Touches: 1},
		{Price: 1.1050, Type: TypeSwingHigh, Touches: 1},
	}

	once := d.mergeSimilar(all, pip)
	twice := d.mergeSimilar(once, pip)

	if len(once) != len(twice) {
		t.Fatalf("second merge changed count: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Price != twice[i].Price {
			t.Fatalf("second merge moved level %d: %v -> %v", i, once[i].Price, twice[i].Price)
		}
	}
}

func TestRoundNumberLevels(t *testing.T) {
	d := defaultDetector()

	lvls := d.roundNumberLevels(1.10237)
	if len(lvls) != 7 {
		t.Fatalf("want 7 round numbers, got %d", len(lvls))
	}
	if math.Abs(lvls[3].Price-1.10) > 1e-9 {
		t.Fatalf("center level want 1.10, got %v", lvls[3].Price)
	}
	if math.Abs(lvls[0].Price-1.07) > 1e-9 || math.Abs(lvls[6].Price-1.13) > 1e-9 {
		t.Fatalf("edge levels want 1.07/1.13, got %v/%v", lvls[0].Price, lvls[6].Price)
	}
	for _, l := range lvls {
		if l.IsSupport != (l.Price < 1.10237) {
			t.Errorf("level %v support flag wrong", l.Price)
		}
	}
}

func TestRoundNumberLevelsJPY(t *testing.T) {
	d := defaultDetector()

	lvls := d.roundNumberLevels(150.30)
	if len(lvls) != 7 {
		t.Fatalf("want 7 round numbers, got %d", len(lvls))
	}
	if math.Abs(lvls[0].Price-147.0) > 1e-9 || math.Abs(lvls[6].Price-153.0) > 1e-9 {
		t.Fatalf("JPY edges want 147/153, got %v/%v", lvls[0].Price, lvls[6].Price)
	}
}

func TestNearestLevel(t *testing.T) {
	lvls := []SRLevel{
		{Price: 1.0950, IsSupport: true},
		{Price: 1.0980, IsSupport: true},
		{Price: 1.1020, IsSupport: false},
		{Price: 1.1050, IsSupport: false},
	}

	sup, ok := NearestLevel(lvls, 1.1000, true)
	if !ok || sup.Price != 1.0980 {
		t.Fatalf("nearest support want 1.0980, got %v (ok=%v)", sup.Price, ok)
	}

	res, ok := NearestLevel(lvls, 1.1000, false)
	if !ok || res.Price != 1.1020 {
		t.Fatalf("nearest resistance want 1.1020, got %v (ok=%v)", res.Price, ok)
	}

	// No support above the highest level's side.
	if _, ok := NearestLevel(lvls, 1.0900, true); ok {
		t.Fatal("no support should exist below 1.0900")
	}
}

func TestMostImportantLevel(t *testing.T) {
	lvls := []SRLevel{
		{Price: 1.0980, IsSupport: true, StrengthScore: 40},
		{Price: 1.0950, IsSupport: true, StrengthScore: 80},
	}

	// Both in range: the stronger one wins even though it is farther.
	l, ok := MostImportantLevel(lvls, 1.1000, true, 100, pip)
	if !ok || l.Price != 1.0950 {
		t.Fatalf("want strongest level 1.0950, got %v (ok=%v)", l.Price, ok)
	}

	// Tight range: only the nearer level qualifies.
	l, ok = MostImportantLevel(lvls, 1.1000, true, 25, pip)
	if !ok || l.Price != 1.0980 {
		t.Fatalf("want in-range level 1.0980, got %v (ok=%v)", l.Price, ok)
	}

	if _, ok := MostImportantLevel(lvls, 1.1000, true, 10, pip); ok {
		t.Fatal("no level within 10 pips")
	}
}

func TestWeeklyMapFor(t *testing.T) {
	d := defaultDetector()

	// Flat series except one excursion defining the range 1.0 - 1.2,
	// closing at 1.1.
	n := 12
	s := types.Series{
		Open:  make([]float64, n),
		High:  make([]float64, n),
		Low:   make([]float64, n),
		Close: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.Open[i], s.High[i], s.Low[i], s.Close[i] = 1.1, 1.1, 1.1, 1.1
	}
	s.High[5] = 1.2
	s.Low[7] = 1.0

	wm := d.WeeklyMapFor(s)

	if wm.WeeklyHigh != 1.2 || wm.WeeklyLow != 1.0 {
		t.Fatalf("range want 1.0-1.2, got %v-%v", wm.WeeklyLow, wm.WeeklyHigh)
	}
	if math.Abs(wm.Pivot-1.1) > 1e-9 {
		t.Fatalf("pivot want 1.1, got %v", wm.Pivot)
	}
	if math.Abs(wm.R1-1.2) > 1e-9 || math.Abs(wm.S1-1.0) > 1e-9 {
		t.Fatalf("R1/S1 want 1.2/1.0, got %v/%v", wm.R1, wm.S1)
	}
	if math.Abs(wm.Fib500-1.1) > 1e-9 {
		t.Fatalf("fib 0.5 want 1.1, got %v", wm.Fib500)
	}
	if math.Abs(wm.Fib236-(1.2-0.236*0.2)) > 1e-9 {
		t.Fatalf("fib 0.236 wrong: %v", wm.Fib236)
	}
}

func TestDetectAllScoredAndSorted(t *testing.T) {
	d := defaultDetector()

	// 60 hourly candles oscillating between 1.09 and 1.11.
	n := 60
	s := types.Series{
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
		Timestamps: make([]time.Time, n),
	}
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		mid := 1.10 + 0.01*math.Sin(float64(i)/6)
		s.Open[i] = mid - 0.0003
		s.Close[i] = mid + 0.0003
		s.High[i] = mid + 0.0010
		s.Low[i] = mid - 0.0010
		s.Timestamps[i] = base.Add(time.Duration(i) * time.Hour)
	}

	lvls := d.DetectAll(s, pip, 0, true)
	if len(lvls) == 0 {
		t.Fatal("expected levels from an oscillating series")
	}

	for i, l := range lvls {
		if l.StrengthScore < 0 || l.StrengthScore > 100 {
			t.Fatalf("score out of bounds: %v", l.StrengthScore)
		}
		if l.StrengthClass != classify(l.StrengthScore) {
			t.Fatalf("class/score mismatch at %d: %s for %v", i, l.StrengthClass, l.StrengthScore)
		}
		if i > 0 && lvls[i-1].StrengthScore < l.StrengthScore {
			t.Fatalf("levels not sorted by score at %d", i)
		}
		if l.DisplayName == "" {
			t.Fatal("display name missing")
		}
	}
}

func TestDetectAllEmptySeries(t *testing.T) {
	d := defaultDetector()
	if lvls := d.DetectAll(types.Series{}, pip, 1.1, true); lvls != nil {
		t.Fatalf("empty series should yield nil, got %d levels", len(lvls))
	}
}

func TestCountTouches(t *testing.T) {
	high := []float64{1.1010, 1.1050, 1.1009}
	low := []float64{1.0990, 1.1030, 1.0991}

	// Band is price +/- tolerance against each candle range.
	if got := countTouches(1.1000, high, low, 0.0005); got != 2 {
		t.Fatalf("touches want 2, got %d", got)
	}
	if got := countTouches(1.2000, high, low, 0.0005); got != 0 {
		t.Fatalf("touches want 0, got %d", got)
	}
}
