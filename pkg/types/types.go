package types

import (
	"fmt"
	"math"
	"time"
)

// Tick represents a single price point from the data feed
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Epoch     int64     `json:"epoch"`
}

// Candle represents a single OHLC bar
type Candle struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Timestamp time.Time `json:"timestamp"`
}

// Series is the candle-data bundle every detector consumes.
// Parallel slices of equal length, index 0 = oldest. Detectors never
// mutate a Series.
type Series struct {
	Open       []float64   `json:"open"`
	High       []float64   `json:"high"`
	Low        []float64   `json:"low"`
	Close      []float64   `json:"close"`
	Timestamps []time.Time `json:"timestamps,omitempty"`
}

// NewSeries builds a Series from a candle slice.
func NewSeries(candles []Candle) Series {
	s := Series{
		Open:       make([]float64, len(candles)),
		High:       make([]float64, len(candles)),
		Low:        make([]float64, len(candles)),
		Close:      make([]float64, len(candles)),
		Timestamps: make([]time.Time, len(candles)),
	}
	for i, c := range candles {
		s.Open[i] = c.Open
		s.High[i] = c.High
		s.Low[i] = c.Low
		s.Close[i] = c.Close
		s.Timestamps[i] = c.Timestamp
	}
	return s
}

// Len returns the number of candles in the series.
func (s Series) Len() int {
	return len(s.Close)
}

// Validate rejects malformed input before it reaches any detector:
// mismatched slice lengths or non-finite prices. Timestamps are optional
// but must match the price length when present.
func (s Series) Validate() error {
	n := len(s.Close)
	if len(s.Open) != n || len(s.High) != n || len(s.Low) != n {
		return fmt.Errorf("series length mismatch: open=%d high=%d low=%d close=%d",
			len(s.Open), len(s.High), len(s.Low), n)
	}
	if len(s.Timestamps) != 0 && len(s.Timestamps) != n {
		return fmt.Errorf("timestamps length mismatch: %d != %d", len(s.Timestamps), n)
	}
	for i := 0; i < n; i++ {
		for _, v := range [4]float64{s.Open[i], s.High[i], s.Low[i], s.Close[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite price at index %d", i)
			}
		}
	}
	return nil
}

// Config represents application configuration
type Config struct {
	Symbols    []string           `yaml:"symbols"`
	PipValues  map[string]float64 `yaml:"pip_values"`
	DataSource DataSourceConfig   `yaml:"datasource"`
	Detectors  DetectorConfig     `yaml:"detectors"`
	Strategy   StrategyConfig     `yaml:"strategy"`
	Storage    StorageConfig      `yaml:"storage"`
	API        APIConfig          `yaml:"api"`
}

type DataSourceConfig struct {
	APIURL         string `yaml:"api_url"`
	ReconnectDelay int    `yaml:"reconnect_delay"`
	PingInterval   int    `yaml:"ping_interval"`
	CandlePeriod   int    `yaml:"candle_period"` // seconds
}

// DetectorConfig holds tunables for every pattern/level detector.
type DetectorConfig struct {
	SwingLookback      int     `yaml:"swing_lookback"`
	PinBarShadowRatio  float64 `yaml:"pin_bar_shadow_ratio"`
	PinBarMaxBodyRatio float64 `yaml:"pin_bar_max_body_ratio"`
	PinBarMinRangePips float64 `yaml:"pin_bar_min_range_pips"`
	MinLegPips         float64 `yaml:"min_leg_pips"`
	MinLegCandles      int     `yaml:"min_leg_candles"`
	MinGapPips         float64 `yaml:"min_gap_pips"`
	LevelTolerancePips float64 `yaml:"level_tolerance_pips"`
	ATRPeriod          int     `yaml:"atr_period"`
	PatternLookback    int     `yaml:"pattern_lookback"`
}

type StrategyConfig struct {
	DefaultSL       string  `yaml:"default_sl"`
	DefaultTP       string  `yaml:"default_tp"`
	FallbackPips    float64 `yaml:"fallback_pips"`
	BufferPips      float64 `yaml:"buffer_pips"`
	ATRMultiplier   float64 `yaml:"atr_multiplier"`
	TPATRMultiplier float64 `yaml:"tp_atr_multiplier"`
	RiskReward      float64 `yaml:"risk_reward"`
	MaxLevelPips    float64 `yaml:"max_level_pips"`
}

type StorageConfig struct {
	MaxCandlesInMemory int `yaml:"max_candles_in_memory"`
}

type APIConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	EnableCORS       bool   `yaml:"enable_cors"`
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	StreamInterval   int    `yaml:"stream_interval"` // seconds between level pushes
}
