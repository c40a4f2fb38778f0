package engine

import (
	"fmt"
	"sync"
	"time"

	"sltp-engine/internal/levels"
	"sltp-engine/internal/patterns"
	"sltp-engine/internal/storage"
	"sltp-engine/internal/strategy"
	"sltp-engine/pkg/types"

	"github.com/google/uuid"
)

// minCandlesForAnalysis is the floor below which level detection is
// refused rather than degraded.
const minCandlesForAnalysis = 20

// Engine ties storage, detectors and strategies together. All analysis
// requests from the API layer go through it.
type Engine struct {
	storage  *storage.MemoryStorage
	registry *strategy.Registry
	patterns *patterns.Manager
	levels   *levels.Detector
	config   types.Config
	cache    map[string]*cachedAnalysis
	cacheMu  sync.RWMutex
}

type cachedAnalysis struct {
	analysis  Analysis
	timestamp time.Time
}

// Analysis is the full level/pattern picture for one symbol.
type Analysis struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Price      float64           `json:"price"`
	Levels     []levels.SRLevel  `json:"levels"`
	Patterns   patterns.Snapshot `json:"patterns"`
	CandleSpan int               `json:"candle_span"`
	ComputedAt time.Time         `json:"computed_at"`
}

// SLTPResult is a stop loss / take profit pair for a proposed trade.
type SLTPResult struct {
	ID         string              `json:"id"`
	Symbol     string              `json:"symbol"`
	Entry      float64             `json:"entry"`
	Direction  string              `json:"direction"`
	StopLoss   strategy.StopResult `json:"stop_loss"`
	TakeProfit strategy.TakeResult `json:"take_profit"`
	ComputedAt time.Time           `json:"computed_at"`
}

// NewEngine creates a new analysis engine
func NewEngine(store *storage.MemoryStorage, config types.Config) *Engine {
	return &Engine{
		storage:  store,
		registry: strategy.NewRegistry(config),
		patterns: patterns.NewManager(config.Detectors),
		levels:   levels.NewDetector(config.Detectors),
		config:   config,
		cache:    make(map[string]*cachedAnalysis),
	}
}

// PipValue returns the configured pip size for a symbol.
func (e *Engine) PipValue(symbol string) float64 {
	if v, ok := e.config.PipValues[symbol]; ok && v > 0 {
		return v
	}
	return 0.0001
}

// series loads and validates a symbol's candle history.
func (e *Engine) series(symbol string) (types.Series, error) {
	candles := e.storage.GetAllCandles(symbol)
	if len(candles) < minCandlesForAnalysis {
		return types.Series{}, fmt.Errorf("insufficient data for %s: %d/%d candles",
			symbol, len(candles), minCandlesForAnalysis)
	}

	s := types.NewSeries(candles)
	if err := s.Validate(); err != nil {
		return types.Series{}, fmt.Errorf("bad candle data for %s: %w", symbol, err)
	}

	return s, nil
}

// Analyze computes levels and patterns for a symbol. Results under 3
// seconds old are reused.
func (e *Engine) Analyze(symbol string) (Analysis, error) {
	if cached := e.getFromCache(symbol); cached != nil {
		if time.Since(cached.timestamp) < 3*time.Second {
			return cached.analysis, nil
		}
	}

	s, err := e.series(symbol)
	if err != nil {
		return Analysis{}, err
	}

	pipValue := e.PipValue(symbol)
	price := e.storage.GetLatestPrice(symbol)
	if price == 0 {
		price = s.Close[s.Len()-1]
	}

	analysis := Analysis{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Price:      price,
		Levels:     e.levels.DetectAll(s, pipValue, price, true),
		Patterns:   e.patterns.DetectAll(s, pipValue, e.config.Detectors.PatternLookback),
		CandleSpan: s.Len(),
		ComputedAt: time.Now(),
	}

	e.addToCache(symbol, analysis)
	e.storage.StoreSnapshot(storage.LevelSnapshot{
		Symbol:     symbol,
		Levels:     analysis.Levels,
		ComputedAt: analysis.ComputedAt,
	})

	return analysis, nil
}

// AnalyzeAll computes levels for every symbol with enough data.
func (e *Engine) AnalyzeAll() map[string]Analysis {
	out := make(map[string]Analysis)
	for _, symbol := range e.storage.GetActiveSymbols() {
		a, err := e.Analyze(symbol)
		if err == nil {
			out[symbol] = a
		}
	}
	return out
}

// ComputeSLTP calculates a stop loss / take profit pair for a trade.
// Empty strategy ids fall back to the configured defaults.
func (e *Engine) ComputeSLTP(symbol string, entry float64, isBuy bool, slID, tpID string) (SLTPResult, error) {
	if slID == "" {
		slID = e.config.Strategy.DefaultSL
	}
	if tpID == "" {
		tpID = e.config.Strategy.DefaultTP
	}

	slStrategy, err := e.registry.Stop(strategy.StopType(slID))
	if err != nil {
		return SLTPResult{}, err
	}
	tpStrategy, err := e.registry.Take(strategy.TakeType(tpID))
	if err != nil {
		return SLTPResult{}, err
	}

	s, err := e.series(symbol)
	if err != nil {
		return SLTPResult{}, err
	}

	pipValue := e.PipValue(symbol)
	if entry == 0 {
		entry = e.storage.GetLatestPrice(symbol)
		if entry == 0 {
			entry = s.Close[s.Len()-1]
		}
	}

	sl := slStrategy.Calculate(entry, isBuy, s, pipValue)
	tp := tpStrategy.Calculate(entry, sl.StopLoss, isBuy, s, pipValue)

	direction := "buy"
	if !isBuy {
		direction = "sell"
	}

	return SLTPResult{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Entry:      entry,
		Direction:  direction,
		StopLoss:   sl,
		TakeProfit: tp,
		ComputedAt: time.Now(),
	}, nil
}

// WeeklyMap builds the weekly pivot/fib map for a symbol.
func (e *Engine) WeeklyMap(symbol string) (levels.WeeklyMap, error) {
	s, err := e.series(symbol)
	if err != nil {
		return levels.WeeklyMap{}, err
	}
	return e.levels.WeeklyMapFor(s), nil
}

// ChartLevels returns display-ready levels for a symbol.
func (e *Engine) ChartLevels(symbol string, maxLevels int) ([]levels.ChartLevel, error) {
	analysis, err := e.Analyze(symbol)
	if err != nil {
		return nil, err
	}
	return levels.ChartLevels(analysis.Levels, maxLevels), nil
}

// Symbols returns the configured symbol list.
func (e *Engine) Symbols() []string {
	return e.config.Symbols
}

// CandleCount reports stored history depth for a symbol.
func (e *Engine) CandleCount(symbol string) int {
	return e.storage.GetCandleCount(symbol)
}

// LatestPrice returns the last seen price for a symbol.
func (e *Engine) LatestPrice(symbol string) float64 {
	return e.storage.GetLatestPrice(symbol)
}

func (e *Engine) getFromCache(key string) *cachedAnalysis {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	return e.cache[key]
}

func (e *Engine) addToCache(key string, analysis Analysis) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	e.cache[key] = &cachedAnalysis{
		analysis:  analysis,
		timestamp: time.Now(),
	}
}

// CleanupCache removes stale cached analyses.
func (e *Engine) CleanupCache() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	for key, cached := range e.cache {
		if time.Since(cached.timestamp) > 10*time.Second {
			delete(e.cache, key)
		}
	}
}
