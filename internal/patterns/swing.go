package patterns

// SwingDetector finds local price extrema via a symmetric window
// comparison. Indices within lookback of either boundary are never
// classified (insufficient context).
type SwingDetector struct {
	lookback   int
	maxResults int
}

// NewSwingDetector creates a swing point detector
func NewSwingDetector(lookback int) *SwingDetector {
	if lookback <= 0 {
		lookback = 5
	}
	return &SwingDetector{lookback: lookback, maxResults: 20}
}

// Detect returns swing highs and swing lows, ordered oldest to newest.
// A candle is a swing high iff its high is strictly greater than every
// high within lookback bars on both sides; symmetric for swing lows.
func (d *SwingDetector) Detect(high, low []float64) (swingHighs, swingLows []Pattern) {
	n := len(high)

	for i := d.lookback; i < n-d.lookback; i++ {
		isHigh := true
		for j := 1; j <= d.lookback; j++ {
			if high[i] <= high[i-j] || high[i] <= high[i+j] {
				isHigh = false
				break
			}
		}
		if isHigh {
			swingHighs = append(swingHighs, Pattern{
				Type:       SwingHigh,
				Index:      i,
				PriceLevel: high[i],
				High:       high[i],
				Low:        low[i],
				Strength:   1.0,
			})
		}

		isLow := true
		for j := 1; j <= d.lookback; j++ {
			if low[i] >= low[i-j] || low[i] >= low[i+j] {
				isLow = false
				break
			}
		}
		if isLow {
			swingLows = append(swingLows, Pattern{
				Type:       SwingLow,
				Index:      i,
				PriceLevel: low[i],
				High:       high[i],
				Low:        low[i],
				Strength:   1.0,
			})
		}
	}

	// Keep only the most recent ones
	if len(swingHighs) > d.maxResults {
		swingHighs = swingHighs[len(swingHighs)-d.maxResults:]
	}
	if len(swingLows) > d.maxResults {
		swingLows = swingLows[len(swingLows)-d.maxResults:]
	}

	return swingHighs, swingLows
}

// FindNearestSwing finds the swing point to place a stop loss behind.
// For a buy it is the nearest swing low strictly below current price,
// for a sell the nearest swing high strictly above. Returns ok=false
// when no candidate exists.
func (d *SwingDetector) FindNearestSwing(high, low []float64, isBuy bool, currentPrice float64) (Pattern, bool) {
	swingHighs, swingLows := d.Detect(high, low)

	var best Pattern
	found := false

	if isBuy {
		for _, s := range swingLows {
			if s.PriceLevel < currentPrice && (!found || s.PriceLevel > best.PriceLevel) {
				best = s
				found = true
			}
		}
	} else {
		for _, s := range swingHighs {
			if s.PriceLevel > currentPrice && (!found || s.PriceLevel < best.PriceLevel) {
				best = s
				found = true
			}
		}
	}

	return best, found
}
