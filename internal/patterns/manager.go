package patterns

import "sltp-engine/pkg/types"

// Manager bundles all pattern detectors behind one entry point.
type Manager struct {
	PinBar *PinBarDetector
	Leg    *LegDetector
	FVG    *FVGDetector
	Swing  *SwingDetector
}

// NewManager builds a manager from detector configuration.
func NewManager(cfg types.DetectorConfig) *Manager {
	return &Manager{
		PinBar: NewPinBarDetector(cfg.PinBarShadowRatio, cfg.PinBarMaxBodyRatio, cfg.PinBarMinRangePips),
		Leg:    NewLegDetector(cfg.SwingLookback, cfg.MinLegPips, cfg.MinLegCandles),
		FVG:    NewFVGDetector(cfg.MinGapPips),
		Swing:  NewSwingDetector(cfg.SwingLookback),
	}
}

// Snapshot holds everything detected in one pass over a series.
type Snapshot struct {
	PinBars    []Pattern `json:"pin_bars"`
	Legs       []Leg     `json:"legs"`
	FVGs       []FVG     `json:"fvgs"`
	SwingHighs []Pattern `json:"swing_highs"`
	SwingLows  []Pattern `json:"swing_lows"`
}

// DetectAll runs every detector over the series.
func (m *Manager) DetectAll(s types.Series, pipValue float64, lookback int) Snapshot {
	swingHighs, swingLows := m.Swing.Detect(s.High, s.Low)
	return Snapshot{
		PinBars:    m.PinBar.Detect(s.Open, s.High, s.Low, s.Close, pipValue, lookback),
		Legs:       m.Leg.DetectLegs(s.High, s.Low, pipValue),
		FVGs:       m.FVG.Detect(s.High, s.Low, pipValue, lookback),
		SwingHighs: swingHighs,
		SwingLows:  swingLows,
	}
}
