package strategy

import (
	"math"

	"github.com/markcheno/go-talib"

	"sltp-engine/internal/levels"
	"sltp-engine/internal/patterns"
	"sltp-engine/internal/sessions"
	"sltp-engine/pkg/types"
)

// direction maps the trade side to the pattern direction to search for.
func direction(isBuy bool) patterns.Direction {
	if isBuy {
		return patterns.Bullish
	}
	return patterns.Bearish
}

// fixedStop builds the fixed-pip result every other strategy falls back to.
func fixedStop(entry float64, isBuy bool, pips, pipValue float64, used StopType, fallback bool) StopResult {
	distance := pips * pipValue
	sl := entry - distance
	if !isBuy {
		sl = entry + distance
	}
	confidence := 1.0
	if fallback {
		confidence = 0.5
	}
	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pips),
		StrategyUsed: used,
		Confidence:   confidence,
		PatternInfo:  map[string]float64{"fixed_pips": pips},
		FallbackUsed: fallback,
	}
}

// FixedPipsStop places the stop a fixed pip distance from entry.
type FixedPipsStop struct {
	Pips float64
}

func (st *FixedPipsStop) Type() StopType { return StopFixedPips }

func (st *FixedPipsStop) Calculate(entry float64, isBuy bool, _ types.Series, pipValue float64) StopResult {
	return fixedStop(entry, isBuy, st.Pips, pipValue, StopFixedPips, false)
}

// ATRStop places the stop a volatility-scaled distance from entry:
// entry ± ATR × multiplier.
type ATRStop struct {
	Multiplier   float64
	Period       int
	FallbackPips float64
}

func (st *ATRStop) Type() StopType { return StopATR }

func (st *ATRStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() <= st.Period {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopATR, true)
	}

	series := talib.Atr(s.High, s.Low, s.Close, st.Period)
	atr := series[len(series)-1]
	if atr <= 0 || math.IsNaN(atr) {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopATR, true)
	}

	distance := atr * st.Multiplier
	sl := entry - distance
	if !isBuy {
		sl = entry + distance
	}

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopATR,
		Confidence:   0.9,
		PatternInfo: map[string]float64{
			"atr":        atr,
			"multiplier": st.Multiplier,
			"period":     float64(st.Period),
		},
	}
}

// PinBarStop places the stop behind the last pin bar in the trade
// direction: below the lower shadow for buys, above the upper shadow
// for sells.
type PinBarStop struct {
	Detector     *patterns.PinBarDetector
	BufferPips   float64
	Lookback     int
	FallbackPips float64
}

func (st *PinBarStop) Type() StopType { return StopPinBar }

func (st *PinBarStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() < 3 {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopPinBar, true)
	}

	pb, ok := st.Detector.FindLastPinBar(s.Open, s.High, s.Low, s.Close, direction(isBuy), pipValue, st.Lookback)
	if !ok {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopPinBar, true)
	}

	anchor := pb.Low
	if !isBuy {
		anchor = pb.High
	}
	sl := withBuffer(anchor, isBuy, st.BufferPips, pipValue)

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopPinBar,
		Confidence:   pb.Strength,
		PatternInfo: map[string]float64{
			"pin_bar_index": float64(pb.Index),
			"pin_bar_high":  pb.High,
			"pin_bar_low":   pb.Low,
			"strength":      pb.Strength,
		},
	}
}

// PreviousLegStop places the stop behind the previous leg in the trade
// direction, the one before the current correction.
type PreviousLegStop struct {
	Detector     *patterns.LegDetector
	BufferPips   float64
	FallbackPips float64
}

func (st *PreviousLegStop) Type() StopType { return StopPreviousLeg }

func (st *PreviousLegStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() < 20 {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopPreviousLeg, true)
	}

	leg, ok := st.Detector.FindPreviousLeg(s.High, s.Low, direction(isBuy), pipValue)
	if !ok {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopPreviousLeg, true)
	}

	anchor := leg.Low
	if !isBuy {
		anchor = leg.High
	}
	sl := withBuffer(anchor, isBuy, st.BufferPips, pipValue)

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopPreviousLeg,
		Confidence:   0.85,
		PatternInfo: map[string]float64{
			"leg_start_index": float64(leg.StartIndex),
			"leg_end_index":   float64(leg.EndIndex),
			"leg_high":        leg.High,
			"leg_low":         leg.Low,
			"leg_size_pips":   leg.SizePips,
		},
	}
}

// FVGStartStop places the stop behind the candle that starts the most
// recent fair value gap in the trade direction.
type FVGStartStop struct {
	Detector     *patterns.FVGDetector
	BufferPips   float64
	Lookback     int
	FallbackPips float64
}

func (st *FVGStartStop) Type() StopType { return StopFVGStart }

func (st *FVGStartStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() < 5 {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopFVGStart, true)
	}

	fvg, ok := st.Detector.FindLastFVG(s.High, s.Low, direction(isBuy), pipValue, st.Lookback)
	if !ok {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopFVGStart, true)
	}

	start := fvg.StartCandleIndex
	if start < 0 || start >= s.Len() {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopFVGStart, true)
	}

	anchor := s.Low[start]
	if !isBuy {
		anchor = s.High[start]
	}
	sl := withBuffer(anchor, isBuy, st.BufferPips, pipValue)

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopFVGStart,
		Confidence:   0.8,
		PatternInfo: map[string]float64{
			"fvg_index":          float64(fvg.Index),
			"fvg_gap_high":       fvg.GapHigh,
			"fvg_gap_low":        fvg.GapLow,
			"fvg_gap_size":       fvg.GapSizePips,
			"start_candle_index": float64(start),
		},
	}
}

// SessionOpenStop places the stop behind the session opening candle.
type SessionOpenStop struct {
	Session      sessions.Session
	BufferPips   float64
	FallbackPips float64
}

func (st *SessionOpenStop) Type() StopType { return StopSessionOpen }

func (st *SessionOpenStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() < 5 || len(s.Timestamps) < 5 {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopSessionOpen, true)
	}

	idx, ok := sessions.OpenIndex(s.Timestamps, st.Session)
	if !ok {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopSessionOpen, true)
	}

	anchor := s.Low[idx]
	if !isBuy {
		anchor = s.High[idx]
	}
	sl := withBuffer(anchor, isBuy, st.BufferPips, pipValue)

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopSessionOpen,
		Confidence:   0.75,
		PatternInfo: map[string]float64{
			"candle_index": float64(idx),
			"candle_high":  s.High[idx],
			"candle_low":   s.Low[idx],
		},
	}
}

// LegStartPinBarStop places the stop behind the pin bar that started the
// current leg, falling back to the leg extreme when no pin bar sits near
// the leg start.
type LegStartPinBarStop struct {
	PinBars      *patterns.PinBarDetector
	Legs         *patterns.LegDetector
	BufferPips   float64
	FallbackPips float64
}

func (st *LegStartPinBarStop) Type() StopType { return StopLegStartPinBar }

func (st *LegStartPinBarStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() < 20 {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopLegStartPinBar, true)
	}

	leg, ok := st.Legs.FindCurrentLeg(s.High, s.Low, direction(isBuy), pipValue)
	if !ok {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopLegStartPinBar, true)
	}

	// Search within 10 candles before the leg start and 3 after it.
	legStart := leg.StartIndex
	searchRange := legStart
	if searchRange > 10 {
		searchRange = 10
	}
	start := legStart - searchRange
	end := legStart + 3
	if end > s.Len() {
		end = s.Len()
	}

	window := st.PinBars.Detect(s.Open[start:end], s.High[start:end], s.Low[start:end], s.Close[start:end], pipValue, end-start)

	target := patterns.PinBarBullish
	if !isBuy {
		target = patterns.PinBarBearish
	}

	bestIdx := -1
	var best patterns.Pattern
	for _, p := range window {
		if p.Type != target {
			continue
		}
		if bestIdx == -1 || abs(p.Index-(legStart-start)) < abs(best.Index-(legStart-start)) {
			best = p
			bestIdx = p.Index
		}
	}

	if bestIdx == -1 {
		// No pin bar at leg start, use the leg extreme instead.
		anchor := leg.Low
		if !isBuy {
			anchor = leg.High
		}
		sl := withBuffer(anchor, isBuy, st.BufferPips, pipValue)
		return StopResult{
			StopLoss:     round5(sl),
			SLPips:       round1(pipsBetween(entry, sl, pipValue)),
			StrategyUsed: StopLegStartPinBar,
			Confidence:   0.7,
			PatternInfo: map[string]float64{
				"leg_start_index": float64(leg.StartIndex),
				"pin_bar_found":   0,
			},
		}
	}

	actual := start + best.Index
	anchor := s.Low[actual]
	if !isBuy {
		anchor = s.High[actual]
	}
	sl := withBuffer(anchor, isBuy, st.BufferPips, pipValue)

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopLegStartPinBar,
		Confidence:   best.Strength * 0.9,
		PatternInfo: map[string]float64{
			"leg_start_index": float64(leg.StartIndex),
			"pin_bar_found":   1,
			"pin_bar_index":   float64(actual),
			"pin_bar_high":    s.High[actual],
			"pin_bar_low":     s.Low[actual],
		},
	}
}

// KeyLevelStop places the stop behind the strongest support (buy) or
// resistance (sell) within range of the entry price.
type KeyLevelStop struct {
	Detector        *levels.Detector
	BufferPips      float64
	MaxDistancePips float64
	FallbackPips    float64
}

func (st *KeyLevelStop) Type() StopType { return StopKeyLevel }

func (st *KeyLevelStop) Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult {
	if s.Len() < 20 {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopKeyLevel, true)
	}

	lvls := st.Detector.DetectAll(s, pipValue, entry, true)

	level, ok := levels.MostImportantLevel(lvls, entry, isBuy, st.MaxDistancePips, pipValue)
	if !ok {
		level, ok = levels.NearestLevel(lvls, entry, isBuy)
	}
	if !ok {
		return fixedStop(entry, isBuy, st.FallbackPips, pipValue, StopKeyLevel, true)
	}

	sl := withBuffer(level.Price, isBuy, st.BufferPips, pipValue)

	return StopResult{
		StopLoss:     round5(sl),
		SLPips:       round1(pipsBetween(entry, sl, pipValue)),
		StrategyUsed: StopKeyLevel,
		Confidence:   level.StrengthScore / 100,
		PatternInfo: map[string]float64{
			"level_price":    level.Price,
			"strength_score": level.StrengthScore,
			"touches":        float64(level.Touches),
		},
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
