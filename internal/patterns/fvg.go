package patterns

// FVGDetector finds 3-candle imbalance patterns. A bullish gap exists
// when the third candle's low sits above the first candle's high; the
// middle candle creates the imbalance.
type FVGDetector struct {
	minGapPips float64
}

// NewFVGDetector creates an FVG detector. Zero falls back to 5 pips.
func NewFVGDetector(minGapPips float64) *FVGDetector {
	if minGapPips <= 0 {
		minGapPips = 5.0
	}
	return &FVGDetector{minGapPips: minGapPips}
}

// Detect scans the last lookback candles for fair value gaps. A
// non-positive lookback scans the whole series. Needs at least 3 candles.
func (d *FVGDetector) Detect(high, low []float64, pipValue float64, lookback int) []FVG {
	var out []FVG

	n := len(high)
	if n < 3 {
		return out
	}

	if lookback <= 0 {
		lookback = n
	}
	start := n - lookback
	if start < 2 {
		start = 2
	}

	for i := start; i < n; i++ {
		c1High := high[i-2]
		c1Low := low[i-2]
		c3High := high[i]
		c3Low := low[i]

		if c3Low > c1High {
			gapPips := (c3Low - c1High) / pipValue
			if gapPips >= d.minGapPips {
				out = append(out, FVG{
					Direction:        Bullish,
					Index:            i - 1,
					GapHigh:          c3Low,
					GapLow:           c1High,
					GapSizePips:      gapPips,
					StartCandleIndex: i - 2,
				})
			}
		}

		if c3High < c1Low {
			gapPips := (c1Low - c3High) / pipValue
			if gapPips >= d.minGapPips {
				out = append(out, FVG{
					Direction:        Bearish,
					Index:            i - 1,
					GapHigh:          c1Low,
					GapLow:           c3High,
					GapSizePips:      gapPips,
					StartCandleIndex: i - 2,
				})
			}
		}
	}

	return out
}

// FindLastFVG returns the most recent gap in the given direction, or
// ok=false when none was detected in the window.
func (d *FVGDetector) FindLastFVG(high, low []float64, dir Direction, pipValue float64, lookback int) (FVG, bool) {
	detected := d.Detect(high, low, pipValue, lookback)

	var best FVG
	found := false
	for _, f := range detected {
		if f.Direction == dir && (!found || f.Index > best.Index) {
			best = f
			found = true
		}
	}

	return best, found
}
