package strategy

import (
	"fmt"

	"sltp-engine/internal/levels"
	"sltp-engine/internal/patterns"
	"sltp-engine/internal/sessions"
	"sltp-engine/pkg/types"
)

// Registry holds every configured strategy variant, keyed by id.
type Registry struct {
	stops map[StopType]StopStrategy
	takes map[TakeType]TakeStrategy
}

// NewRegistry wires the full strategy set from configuration. Detectors
// are shared across strategies; they are stateless so this is safe.
func NewRegistry(cfg types.Config) *Registry {
	det := cfg.Detectors
	st := cfg.Strategy

	fallback := st.FallbackPips
	if fallback <= 0 {
		fallback = 50.0
	}
	buffer := st.BufferPips
	if buffer <= 0 {
		buffer = 5.0
	}
	atrMult := st.ATRMultiplier
	if atrMult <= 0 {
		atrMult = 2.0
	}
	tpATRMult := st.TPATRMultiplier
	if tpATRMult <= 0 {
		tpATRMult = 3.0
	}
	rr := st.RiskReward
	if rr <= 0 {
		rr = 2.0
	}
	maxLevel := st.MaxLevelPips
	if maxLevel <= 0 {
		maxLevel = 100.0
	}
	atrPeriod := det.ATRPeriod
	if atrPeriod <= 0 {
		atrPeriod = 14
	}
	lookback := det.PatternLookback
	if lookback <= 0 {
		lookback = 50
	}

	pinBars := patterns.NewPinBarDetector(det.PinBarShadowRatio, det.PinBarMaxBodyRatio, det.PinBarMinRangePips)
	legs := patterns.NewLegDetector(det.SwingLookback, det.MinLegPips, det.MinLegCandles)
	fvgs := patterns.NewFVGDetector(det.MinGapPips)
	srLevels := levels.NewDetector(det)

	r := &Registry{
		stops: make(map[StopType]StopStrategy),
		takes: make(map[TakeType]TakeStrategy),
	}

	for _, s := range []StopStrategy{
		&FixedPipsStop{Pips: fallback},
		&ATRStop{Multiplier: atrMult, Period: atrPeriod, FallbackPips: fallback},
		&PinBarStop{Detector: pinBars, BufferPips: buffer, Lookback: lookback, FallbackPips: fallback},
		&PreviousLegStop{Detector: legs, BufferPips: buffer, FallbackPips: fallback},
		&FVGStartStop{Detector: fvgs, BufferPips: buffer, Lookback: lookback, FallbackPips: fallback},
		&SessionOpenStop{Session: sessions.NewYork, BufferPips: buffer, FallbackPips: fallback},
		&LegStartPinBarStop{PinBars: pinBars, Legs: legs, BufferPips: buffer, FallbackPips: fallback},
		&KeyLevelStop{Detector: srLevels, BufferPips: buffer, MaxDistancePips: maxLevel, FallbackPips: fallback},
	} {
		r.stops[s.Type()] = s
	}

	for _, t := range []TakeStrategy{
		&FixedPipsTake{Pips: fallback * rr},
		&RiskRewardTake{Ratio: rr},
		&ATRTake{Multiplier: tpATRMult, Period: atrPeriod, FallbackPips: fallback * rr},
		&KeyLevelTake{Detector: srLevels, BufferPips: buffer, FallbackPips: fallback * rr},
	} {
		r.takes[t.Type()] = t
	}

	return r
}

// Stop returns the stop loss strategy for an id.
func (r *Registry) Stop(id StopType) (StopStrategy, error) {
	s, ok := r.stops[id]
	if !ok {
		return nil, fmt.Errorf("unknown stop loss strategy: %s", id)
	}
	return s, nil
}

// Take returns the take profit strategy for an id.
func (r *Registry) Take(id TakeType) (TakeStrategy, error) {
	t, ok := r.takes[id]
	if !ok {
		return nil, fmt.Errorf("unknown take profit strategy: %s", id)
	}
	return t, nil
}

// Descriptor describes a strategy for UI listings.
type Descriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
}

// StopDescriptors lists the available stop loss strategies.
func StopDescriptors() []Descriptor {
	return []Descriptor{
		{ID: string(StopFixedPips), Name: "Fixed Pips", Description: "Simple fixed pip distance from entry", Params: []string{"pips"}},
		{ID: string(StopATR), Name: "ATR-Based", Description: "Dynamic SL based on market volatility (ATR x multiplier)", Params: []string{"multiplier", "period"}},
		{ID: string(StopPinBar), Name: "Pin Bar", Description: "Behind the last pin bar in trade direction", Params: []string{"min_shadow_ratio", "lookback"}},
		{ID: string(StopPreviousLeg), Name: "Previous Leg", Description: "Behind the previous swing leg (before correction)", Params: []string{"swing_lookback", "min_leg_pips"}},
		{ID: string(StopFVGStart), Name: "FVG Start", Description: "Behind the candle that starts the FVG zone", Params: []string{"min_gap_pips", "lookback"}},
		{ID: string(StopSessionOpen), Name: "Session Open", Description: "Behind the session opening candle (NY/London/Tokyo)", Params: []string{"session"}},
		{ID: string(StopLegStartPinBar), Name: "Leg Start Pin Bar", Description: "Behind the pin bar that started the current leg", Params: []string{"min_shadow_ratio", "swing_lookback"}},
		{ID: string(StopKeyLevel), Name: "Key Level", Description: "Behind the strongest support/resistance level in range", Params: []string{"max_distance_pips"}},
	}
}

// TakeDescriptors lists the available take profit strategies.
func TakeDescriptors() []Descriptor {
	return []Descriptor{
		{ID: string(TakeRiskReward), Name: "Risk/Reward", Description: "TP at a fixed multiple of the stop distance", Params: []string{"ratio"}},
		{ID: string(TakeATR), Name: "ATR-Based", Description: "Dynamic TP based on market volatility (ATR x multiplier)", Params: []string{"multiplier", "period"}},
		{ID: string(TakeFixedPips), Name: "Fixed Pips", Description: "Simple fixed pip distance from entry", Params: []string{"pips"}},
		{ID: string(TakeKeyLevel), Name: "Key Level", Description: "At the nearest level on the profit side", Params: []string{"buffer_pips"}},
	}
}
