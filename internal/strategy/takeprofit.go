package strategy

import (
	"math"

	"github.com/markcheno/go-talib"

	"sltp-engine/internal/levels"
	"sltp-engine/pkg/types"
)

// rrOf computes the achieved risk/reward ratio of a stop/target pair.
func rrOf(entry, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entry - stopLoss)
	if risk == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / risk
}

// fixedTake builds the fixed-pip result ratio strategies fall back to.
func fixedTake(entry, stopLoss float64, isBuy bool, pips, pipValue float64, used TakeType, fallback bool) TakeResult {
	distance := pips * pipValue
	tp := entry + distance
	if !isBuy {
		tp = entry - distance
	}
	confidence := 1.0
	if fallback {
		confidence = 0.5
	}
	return TakeResult{
		TakeProfit:   round5(tp),
		TPPips:       round1(pips),
		RiskReward:   rrOf(entry, stopLoss, tp),
		StrategyUsed: used,
		Confidence:   confidence,
		LevelInfo:    map[string]float64{"fixed_pips": pips},
		FallbackUsed: fallback,
	}
}

// FixedPipsTake targets a fixed pip distance from entry.
type FixedPipsTake struct {
	Pips float64
}

func (tk *FixedPipsTake) Type() TakeType { return TakeFixedPips }

func (tk *FixedPipsTake) Calculate(entry, stopLoss float64, isBuy bool, _ types.Series, pipValue float64) TakeResult {
	return fixedTake(entry, stopLoss, isBuy, tk.Pips, pipValue, TakeFixedPips, false)
}

// RiskRewardTake targets a fixed multiple of the stop distance.
type RiskRewardTake struct {
	Ratio float64
}

func (tk *RiskRewardTake) Type() TakeType { return TakeRiskReward }

func (tk *RiskRewardTake) Calculate(entry, stopLoss float64, isBuy bool, _ types.Series, pipValue float64) TakeResult {
	distance := math.Abs(entry-stopLoss) * tk.Ratio
	tp := entry + distance
	if !isBuy {
		tp = entry - distance
	}
	return TakeResult{
		TakeProfit:   round5(tp),
		TPPips:       round1(pipsBetween(entry, tp, pipValue)),
		RiskReward:   tk.Ratio,
		StrategyUsed: TakeRiskReward,
		Confidence:   1.0,
		LevelInfo:    map[string]float64{"rr_ratio": tk.Ratio},
	}
}

// ATRTake targets a volatility-scaled distance: entry ± ATR × multiplier.
type ATRTake struct {
	Multiplier   float64
	Period       int
	FallbackPips float64
}

func (tk *ATRTake) Type() TakeType { return TakeATR }

func (tk *ATRTake) Calculate(entry, stopLoss float64, isBuy bool, s types.Series, pipValue float64) TakeResult {
	if s.Len() <= tk.Period {
		return fixedTake(entry, stopLoss, isBuy, tk.FallbackPips, pipValue, TakeATR, true)
	}

	series := talib.Atr(s.High, s.Low, s.Close, tk.Period)
	atr := series[len(series)-1]
	if atr <= 0 || math.IsNaN(atr) {
		return fixedTake(entry, stopLoss, isBuy, tk.FallbackPips, pipValue, TakeATR, true)
	}

	distance := atr * tk.Multiplier
	tp := entry + distance
	if !isBuy {
		tp = entry - distance
	}

	return TakeResult{
		TakeProfit:   round5(tp),
		TPPips:       round1(pipsBetween(entry, tp, pipValue)),
		RiskReward:   rrOf(entry, stopLoss, tp),
		StrategyUsed: TakeATR,
		Confidence:   0.9,
		LevelInfo: map[string]float64{
			"atr":        atr,
			"multiplier": tk.Multiplier,
		},
	}
}

// KeyLevelTake targets the nearest level on the profit side of entry:
// resistance above for buys, support below for sells.
type KeyLevelTake struct {
	Detector     *levels.Detector
	BufferPips   float64
	FallbackPips float64
}

func (tk *KeyLevelTake) Type() TakeType { return TakeKeyLevel }

func (tk *KeyLevelTake) Calculate(entry, stopLoss float64, isBuy bool, s types.Series, pipValue float64) TakeResult {
	if s.Len() < 20 {
		return fixedTake(entry, stopLoss, isBuy, tk.FallbackPips, pipValue, TakeKeyLevel, true)
	}

	lvls := tk.Detector.DetectAll(s, pipValue, entry, true)

	// Profit target sits on the opposite side from the stop.
	level, ok := levels.NearestLevel(lvls, entry, !isBuy)
	if !ok {
		return fixedTake(entry, stopLoss, isBuy, tk.FallbackPips, pipValue, TakeKeyLevel, true)
	}

	// Pull the target a buffer inside the level so it fills before the
	// level rejects price.
	buffer := tk.BufferPips * pipValue
	tp := level.Price - buffer
	if !isBuy {
		tp = level.Price + buffer
	}

	return TakeResult{
		TakeProfit:   round5(tp),
		TPPips:       round1(pipsBetween(entry, tp, pipValue)),
		RiskReward:   rrOf(entry, stopLoss, tp),
		StrategyUsed: TakeKeyLevel,
		Confidence:   level.StrengthScore / 100,
		LevelInfo: map[string]float64{
			"level_price":    level.Price,
			"strength_score": level.StrengthScore,
			"touches":        float64(level.Touches),
		},
	}
}
