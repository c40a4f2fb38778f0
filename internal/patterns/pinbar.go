package patterns

import "math"

// PinBarDetector classifies single candles as reversal bars by their
// shadow/body ratio. Body direction is not important; the dominant
// shadow determines the type.
type PinBarDetector struct {
	minShadowRatio float64 // shadow must be at least this multiple of the body
	maxBodyRatio   float64 // body at most this fraction of the total range
	minRangePips   float64 // minimum candle range in pips
}

// NewPinBarDetector creates a pin bar detector with the given thresholds.
// Zero values fall back to the standard 2.0 / 0.35 / 10 configuration.
func NewPinBarDetector(minShadowRatio, maxBodyRatio, minRangePips float64) *PinBarDetector {
	if minShadowRatio <= 0 {
		minShadowRatio = 2.0
	}
	if maxBodyRatio <= 0 {
		maxBodyRatio = 0.35
	}
	if minRangePips <= 0 {
		minRangePips = 10.0
	}
	return &PinBarDetector{
		minShadowRatio: minShadowRatio,
		maxBodyRatio:   maxBodyRatio,
		minRangePips:   minRangePips,
	}
}

// Detect scans the last lookback candles for pin bars. A non-positive
// lookback scans the whole series. Needs at least 3 candles.
func (d *PinBarDetector) Detect(open, high, low, close []float64, pipValue float64, lookback int) []Pattern {
	var out []Pattern

	n := len(close)
	if n < 3 {
		return out
	}

	if lookback <= 0 {
		lookback = n
	}
	start := n - lookback
	if start < 0 {
		start = 0
	}

	for i := start; i < n; i++ {
		pt, level, strength, ok := d.check(open[i], high[i], low[i], close[i], pipValue)
		if !ok {
			continue
		}
		out = append(out, Pattern{
			Type:       pt,
			Index:      i,
			PriceLevel: level,
			High:       high[i],
			Low:        low[i],
			Strength:   strength,
			Metadata: map[string]float64{
				"open":         open[i],
				"close":        close[i],
				"body_size":    math.Abs(close[i] - open[i]),
				"upper_shadow": high[i] - math.Max(open[i], close[i]),
				"lower_shadow": math.Min(open[i], close[i]) - low[i],
			},
		})
	}

	return out
}

// check tests a single candle. A candle can match neither direction but
// never both, because each shadow must exceed the other by 1.5x.
func (d *PinBarDetector) check(open, high, low, close, pipValue float64) (PatternType, float64, float64, bool) {
	totalRange := high - low
	if totalRange < d.minRangePips*pipValue {
		return "", 0, 0, false
	}

	body := math.Abs(close - open)
	bodyTop := math.Max(open, close)
	bodyBottom := math.Min(open, close)

	upperShadow := high - bodyTop
	lowerShadow := bodyBottom - low

	bodyRatio := 1.0
	if totalRange > 0 {
		bodyRatio = body / totalRange
	}
	if bodyRatio > d.maxBodyRatio {
		return "", 0, 0, false
	}

	// Bullish: long lower shadow, key level is the low
	if lowerShadow > 0 && body > 0 {
		shadowToBody := lowerShadow / body
		if shadowToBody >= d.minShadowRatio && lowerShadow > upperShadow*1.5 {
			strength := math.Min(1.0, shadowToBody/(d.minShadowRatio*2))
			return PinBarBullish, low, strength, true
		}
	}

	// Bearish: long upper shadow, key level is the high
	if upperShadow > 0 && body > 0 {
		shadowToBody := upperShadow / body
		if shadowToBody >= d.minShadowRatio && upperShadow > lowerShadow*1.5 {
			strength := math.Min(1.0, shadowToBody/(d.minShadowRatio*2))
			return PinBarBearish, high, strength, true
		}
	}

	return "", 0, 0, false
}

// FindLastPinBar returns the most recent pin bar in the given direction,
// or ok=false when none was detected in the window.
func (d *PinBarDetector) FindLastPinBar(open, high, low, close []float64, dir Direction, pipValue float64, lookback int) (Pattern, bool) {
	detected := d.Detect(open, high, low, close, pipValue, lookback)

	target := PinBarBullish
	if dir == Bearish {
		target = PinBarBearish
	}

	var best Pattern
	found := false
	for _, p := range detected {
		if p.Type == target && (!found || p.Index > best.Index) {
			best = p
			found = true
		}
	}

	return best, found
}
