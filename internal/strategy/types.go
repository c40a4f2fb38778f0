package strategy

import (
	"math"

	"sltp-engine/pkg/types"
)

// StopType identifies a stop loss calculation strategy
type StopType string

const (
	StopFixedPips      StopType = "fixed_pips"
	StopATR            StopType = "atr"
	StopPinBar         StopType = "pin_bar"
	StopPreviousLeg    StopType = "previous_leg"
	StopFVGStart       StopType = "fvg_start"
	StopSessionOpen    StopType = "session_open"
	StopLegStartPinBar StopType = "leg_start_pin_bar"
	StopKeyLevel       StopType = "key_level"
)

// TakeType identifies a take profit calculation strategy
type TakeType string

const (
	TakeRiskReward TakeType = "risk_reward"
	TakeATR        TakeType = "atr"
	TakeFixedPips  TakeType = "fixed_pips"
	TakeKeyLevel   TakeType = "key_level"
)

// StopResult is the outcome of a stop loss calculation. FallbackUsed is
// set when the strategy found no pattern and substituted its fixed-pip
// fallback.
type StopResult struct {
	StopLoss     float64            `json:"stop_loss"`
	SLPips       float64            `json:"sl_pips"`
	StrategyUsed StopType           `json:"strategy_used"`
	Confidence   float64            `json:"confidence"` // 0-1
	PatternInfo  map[string]float64 `json:"pattern_info,omitempty"`
	FallbackUsed bool               `json:"fallback_used"`
}

// TakeResult is the outcome of a take profit calculation.
type TakeResult struct {
	TakeProfit   float64            `json:"take_profit"`
	TPPips       float64            `json:"tp_pips"`
	RiskReward   float64            `json:"risk_reward_ratio"`
	StrategyUsed TakeType           `json:"strategy_used"`
	Confidence   float64            `json:"confidence"`
	LevelInfo    map[string]float64 `json:"level_info,omitempty"`
	FallbackUsed bool               `json:"fallback_used"`
}

// StopStrategy is the single capability every stop loss variant
// implements. Absent pattern results never surface as errors; each
// strategy applies its own fallback.
type StopStrategy interface {
	Type() StopType
	Calculate(entry float64, isBuy bool, s types.Series, pipValue float64) StopResult
}

// TakeStrategy mirrors StopStrategy for take profit. stopLoss is the
// already-calculated stop, used by ratio-based variants.
type TakeStrategy interface {
	Type() TakeType
	Calculate(entry, stopLoss float64, isBuy bool, s types.Series, pipValue float64) TakeResult
}

// round5 rounds a price to 5 decimal places.
func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// pipsBetween converts a price distance to pips.
func pipsBetween(a, b, pipValue float64) float64 {
	if pipValue <= 0 {
		return 0
	}
	return math.Abs(a-b) / pipValue
}

// round1 rounds a pip count to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// withBuffer moves a stop price further from entry by bufferPips.
func withBuffer(price float64, isBuy bool, bufferPips, pipValue float64) float64 {
	buffer := bufferPips * pipValue
	if isBuy {
		return price - buffer
	}
	return price + buffer
}
