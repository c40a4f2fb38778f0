package patterns

// PatternType represents a detected price pattern type
type PatternType string

const (
	PinBarBullish PatternType = "pin_bar_bullish"
	PinBarBearish PatternType = "pin_bar_bearish"
	SwingHigh     PatternType = "swing_high"
	SwingLow      PatternType = "swing_low"
	FVGBullish    PatternType = "fvg_bullish"
	FVGBearish    PatternType = "fvg_bearish"
)

// Direction of a trade or pattern
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Pattern holds a single detected pattern. Index refers into the candle
// series (0 = oldest). Constructed fresh per detection call, never cached.
type Pattern struct {
	Type       PatternType        `json:"pattern_type"`
	Index      int                `json:"index"`
	PriceLevel float64            `json:"price_level"`
	High       float64            `json:"high"`
	Low        float64            `json:"low"`
	Strength   float64            `json:"strength"` // 0-1, pattern quality
	Metadata   map[string]float64 `json:"metadata,omitempty"`
}

// Leg is a directional price run between two alternating swing extrema.
// StartIndex < EndIndex always holds for returned legs.
type Leg struct {
	Direction   Direction `json:"direction"`
	StartIndex  int       `json:"start_index"`
	EndIndex    int       `json:"end_index"`
	StartPrice  float64   `json:"start_price"`
	EndPrice    float64   `json:"end_price"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	SizePips    float64   `json:"size_pips"`
	CandleCount int       `json:"candle_count"`
}

// FVG is a fair value gap: a 3-candle imbalance where the 1st and 3rd
// candles' ranges do not overlap. Index is the middle candle.
type FVG struct {
	Direction        Direction `json:"direction"`
	Index            int       `json:"index"`
	GapHigh          float64   `json:"gap_high"`
	GapLow           float64   `json:"gap_low"`
	GapSizePips      float64   `json:"gap_size"`
	StartCandleIndex int       `json:"start_candle_index"`
}
