package config

import (
	"fmt"
	"os"

	"sltp-engine/pkg/types"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file
func Load(filename string) (types.Config, error) {
	var config types.Config

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config: %w", err)
	}

	// Set defaults for missing values
	setDefaults(&config)

	// Validate config
	if err := validate(config); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for missing config fields
func setDefaults(config *types.Config) {
	// API defaults
	if config.API.Host == "" {
		config.API.Host = "0.0.0.0"
	}
	if config.API.Port == 0 {
		config.API.Port = 8080
	}
	if !config.API.EnableCORS {
		config.API.EnableCORS = true
	}
	if !config.API.WebSocketEnabled {
		config.API.WebSocketEnabled = true
	}
	if config.API.StreamInterval == 0 {
		config.API.StreamInterval = 5
	}

	// DataSource defaults
	if config.DataSource.ReconnectDelay == 0 {
		config.DataSource.ReconnectDelay = 5
	}
	if config.DataSource.PingInterval == 0 {
		config.DataSource.PingInterval = 25
	}
	if config.DataSource.CandlePeriod == 0 {
		config.DataSource.CandlePeriod = 3600
	}

	// Detector defaults
	if config.Detectors.SwingLookback == 0 {
		config.Detectors.SwingLookback = 5
	}
	if config.Detectors.PinBarShadowRatio == 0 {
		config.Detectors.PinBarShadowRatio = 2.0
	}
	if config.Detectors.PinBarMaxBodyRatio == 0 {
		config.Detectors.PinBarMaxBodyRatio = 0.35
	}
	if config.Detectors.PinBarMinRangePips == 0 {
		config.Detectors.PinBarMinRangePips = 10.0
	}
	if config.Detectors.MinLegPips == 0 {
		config.Detectors.MinLegPips = 20.0
	}
	if config.Detectors.MinLegCandles == 0 {
		config.Detectors.MinLegCandles = 3
	}
	if config.Detectors.MinGapPips == 0 {
		config.Detectors.MinGapPips = 5.0
	}
	if config.Detectors.LevelTolerancePips == 0 {
		config.Detectors.LevelTolerancePips = 15.0
	}
	if config.Detectors.ATRPeriod == 0 {
		config.Detectors.ATRPeriod = 14
	}
	if config.Detectors.PatternLookback == 0 {
		config.Detectors.PatternLookback = 50
	}

	// Strategy defaults
	if config.Strategy.DefaultSL == "" {
		config.Strategy.DefaultSL = "atr"
	}
	if config.Strategy.DefaultTP == "" {
		config.Strategy.DefaultTP = "risk_reward"
	}
	if config.Strategy.FallbackPips == 0 {
		config.Strategy.FallbackPips = 50.0
	}
	if config.Strategy.BufferPips == 0 {
		config.Strategy.BufferPips = 5.0
	}
	if config.Strategy.ATRMultiplier == 0 {
		config.Strategy.ATRMultiplier = 2.0
	}
	if config.Strategy.TPATRMultiplier == 0 {
		config.Strategy.TPATRMultiplier = 3.0
	}
	if config.Strategy.RiskReward == 0 {
		config.Strategy.RiskReward = 2.0
	}
	if config.Strategy.MaxLevelPips == 0 {
		config.Strategy.MaxLevelPips = 100.0
	}

	// Storage defaults
	if config.Storage.MaxCandlesInMemory == 0 {
		config.Storage.MaxCandlesInMemory = 500
	}

	// Pip value defaults for the configured symbols
	if config.PipValues == nil {
		config.PipValues = make(map[string]float64)
	}
	for _, symbol := range config.Symbols {
		if config.PipValues[symbol] == 0 {
			config.PipValues[symbol] = defaultPipValue(symbol)
		}
	}
}

// defaultPipValue guesses the pip size from the symbol name. JPY pairs
// quote 2-3 decimals, everything else 4-5.
func defaultPipValue(symbol string) float64 {
	for i := 0; i+3 <= len(symbol); i++ {
		if symbol[i:i+3] == "JPY" {
			return 0.01
		}
	}
	return 0.0001
}

// validate validates configuration
func validate(config types.Config) error {
	if len(config.Symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}

	if config.API.Port < 1 || config.API.Port > 65535 {
		return fmt.Errorf("invalid API port")
	}

	if config.Detectors.SwingLookback < 1 {
		return fmt.Errorf("swing_lookback must be at least 1")
	}

	if config.Detectors.PinBarMaxBodyRatio <= 0 || config.Detectors.PinBarMaxBodyRatio >= 1 {
		return fmt.Errorf("pin_bar_max_body_ratio must be between 0 and 1")
	}

	if config.Strategy.RiskReward <= 0 {
		return fmt.Errorf("risk_reward must be positive")
	}

	validSL := map[string]bool{
		"fixed_pips": true, "atr": true, "pin_bar": true, "previous_leg": true,
		"fvg_start": true, "session_open": true, "leg_start_pin_bar": true, "key_level": true,
	}
	if !validSL[config.Strategy.DefaultSL] {
		return fmt.Errorf("invalid default_sl '%s'", config.Strategy.DefaultSL)
	}

	validTP := map[string]bool{
		"risk_reward": true, "atr": true, "fixed_pips": true, "key_level": true,
	}
	if !validTP[config.Strategy.DefaultTP] {
		return fmt.Errorf("invalid default_tp '%s'", config.Strategy.DefaultTP)
	}

	return nil
}
