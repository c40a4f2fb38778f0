package patterns

import (
	"math"
	"sort"
)

// LegDetector chains alternating swing highs/lows into directional legs.
// A bullish leg runs swing low to swing high, a bearish leg the reverse.
type LegDetector struct {
	swingLookback int
	minLegPips    float64
	minLegCandles int
}

// NewLegDetector creates a leg detector. Zero values fall back to the
// standard 5 / 20 / 3 configuration.
func NewLegDetector(swingLookback int, minLegPips float64, minLegCandles int) *LegDetector {
	if swingLookback <= 0 {
		swingLookback = 5
	}
	if minLegPips <= 0 {
		minLegPips = 20.0
	}
	if minLegCandles <= 0 {
		minLegCandles = 3
	}
	return &LegDetector{
		swingLookback: swingLookback,
		minLegPips:    minLegPips,
		minLegCandles: minLegCandles,
	}
}

type taggedSwing struct {
	kind  string // "high" or "low"
	index int
	price float64
}

// detectSwings runs the symmetric window comparison with this detector's
// own lookback. Same algorithm as SwingDetector but legs need the raw
// (index, price) pairs rather than Pattern records.
func (d *LegDetector) detectSwings(high, low []float64) []taggedSwing {
	var swings []taggedSwing
	n := len(high)

	for i := d.swingLookback; i < n-d.swingLookback; i++ {
		isHigh := true
		for j := 1; j <= d.swingLookback; j++ {
			if high[i] <= high[i-j] || high[i] <= high[i+j] {
				isHigh = false
				break
			}
		}
		if isHigh {
			swings = append(swings, taggedSwing{kind: "high", index: i, price: high[i]})
		}

		isLow := true
		for j := 1; j <= d.swingLookback; j++ {
			if low[i] >= low[i-j] || low[i] >= low[i+j] {
				isLow = false
				break
			}
		}
		if isLow {
			swings = append(swings, taggedSwing{kind: "low", index: i, price: low[i]})
		}
	}

	sort.Slice(swings, func(a, b int) bool { return swings[a].index < swings[b].index })
	return swings
}

// DetectLegs walks consecutive swing pairs and returns legs ordered by
// start index. A pair rejected for size or length is not re-paired with
// a further neighbor; the walk simply moves on to the next consecutive
// pair.
func (d *LegDetector) DetectLegs(high, low []float64, pipValue float64) []Leg {
	var legs []Leg

	swings := d.detectSwings(high, low)

	for i := 0; i+1 < len(swings); i++ {
		s1 := swings[i]
		s2 := swings[i+1]

		// Same kind should not occur with alternating extrema, but the
		// walk does not structurally enforce it, so guard explicitly.
		if s1.kind == s2.kind {
			continue
		}

		candleCount := s2.index - s1.index
		if candleCount < d.minLegCandles {
			continue
		}

		var dir Direction
		var legHigh, legLow float64
		if s1.kind == "low" && s2.kind == "high" {
			dir = Bullish
			legHigh = s2.price
			legLow = s1.price
		} else {
			dir = Bearish
			legHigh = s1.price
			legLow = s2.price
		}

		sizePips := math.Abs(s2.price-s1.price) / pipValue
		if sizePips < d.minLegPips {
			continue
		}

		legs = append(legs, Leg{
			Direction:   dir,
			StartIndex:  s1.index,
			EndIndex:    s2.index,
			StartPrice:  s1.price,
			EndPrice:    s2.price,
			High:        legHigh,
			Low:         legLow,
			SizePips:    sizePips,
			CandleCount: candleCount,
		})
	}

	return legs
}

// FindPreviousLeg returns the leg before the most recent correction: the
// second-to-last leg in the trade direction. If only one such leg exists
// it is returned; ok=false when there are none.
func (d *LegDetector) FindPreviousLeg(high, low []float64, dir Direction, pipValue float64) (Leg, bool) {
	legs := d.DetectLegs(high, low, pipValue)
	if len(legs) < 2 {
		return Leg{}, false
	}

	var same []Leg
	for _, l := range legs {
		if l.Direction == dir {
			same = append(same, l)
		}
	}

	switch {
	case len(same) >= 2:
		return same[len(same)-2], true
	case len(same) == 1:
		return same[0], true
	default:
		return Leg{}, false
	}
}

// FindCurrentLeg returns the most recent leg in the given direction.
func (d *LegDetector) FindCurrentLeg(high, low []float64, dir Direction, pipValue float64) (Leg, bool) {
	legs := d.DetectLegs(high, low, pipValue)

	for i := len(legs) - 1; i >= 0; i-- {
		if legs[i].Direction == dir {
			return legs[i], true
		}
	}

	return Leg{}, false
}
