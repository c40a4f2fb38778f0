package storage

import (
	"sync"
	"time"

	"sltp-engine/internal/levels"
	"sltp-engine/pkg/types"
)

// symbolData is the per-symbol candle history plus last known price.
type symbolData struct {
	candles    []types.Candle
	lastPrice  float64
	lastUpdate time.Time
	active     bool
}

// LevelSnapshot is a cached analysis result for one symbol.
type LevelSnapshot struct {
	Symbol     string           `json:"symbol"`
	Levels     []levels.SRLevel `json:"levels"`
	ComputedAt time.Time        `json:"computed_at"`
}

// MemoryStorage stores all data in memory
type MemoryStorage struct {
	symbols    map[string]*symbolData
	snapshots  map[string]LevelSnapshot
	mu         sync.RWMutex
	maxCandles int
}

// NewMemoryStorage creates a new memory storage
func NewMemoryStorage(maxCandles int) *MemoryStorage {
	return &MemoryStorage{
		symbols:    make(map[string]*symbolData),
		snapshots:  make(map[string]LevelSnapshot),
		maxCandles: maxCandles,
	}
}

func (s *MemoryStorage) data(symbol string) *symbolData {
	if s.symbols[symbol] == nil {
		s.symbols[symbol] = &symbolData{active: true}
	}
	return s.symbols[symbol]
}

// AddCandle appends a closed candle to a symbol's history
func (s *MemoryStorage) AddCandle(symbol string, candle types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data(symbol)
	d.candles = append(d.candles, candle)
	d.lastPrice = candle.Close
	d.lastUpdate = candle.Timestamp

	// Keep only last N candles
	if len(d.candles) > s.maxCandles {
		d.candles = d.candles[len(d.candles)-s.maxCandles:]
	}
}

// ReplaceCandles swaps in a full history, used when loading backfill data
func (s *MemoryStorage) ReplaceCandles(symbol string, candles []types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candles) > s.maxCandles {
		candles = candles[len(candles)-s.maxCandles:]
	}

	d := s.data(symbol)
	d.candles = append([]types.Candle{}, candles...)
	if len(candles) > 0 {
		last := candles[len(candles)-1]
		d.lastPrice = last.Close
		d.lastUpdate = last.Timestamp
	}
}

// AddTick updates the last known price without touching candle history
func (s *MemoryStorage) AddTick(symbol string, tick types.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data(symbol)
	d.lastPrice = tick.Price
	d.lastUpdate = tick.Timestamp
}

// GetCandles returns the last n candles for a symbol
func (s *MemoryStorage) GetCandles(symbol string, n int) []types.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.symbols[symbol]
	if !exists || len(d.candles) == 0 {
		return []types.Candle{}
	}

	candles := d.candles
	if n > 0 && len(candles) > n {
		candles = candles[len(candles)-n:]
	}

	return append([]types.Candle{}, candles...)
}

// GetAllCandles returns the full history for a symbol
func (s *MemoryStorage) GetAllCandles(symbol string) []types.Candle {
	return s.GetCandles(symbol, 0)
}

// GetLatestPrice returns the most recent price
func (s *MemoryStorage) GetLatestPrice(symbol string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, exists := s.symbols[symbol]; exists {
		return d.lastPrice
	}

	return 0
}

// GetCandleCount returns number of stored candles for a symbol
func (s *MemoryStorage) GetCandleCount(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, exists := s.symbols[symbol]; exists {
		return len(d.candles)
	}

	return 0
}

// GetActiveSymbols returns the symbols with candle data
func (s *MemoryStorage) GetActiveSymbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := []string{}
	for symbol, d := range s.symbols {
		if d.active && len(d.candles) > 0 {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

// StoreSnapshot caches the latest level analysis for a symbol
func (s *MemoryStorage) StoreSnapshot(snap LevelSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.Symbol] = snap
}

// GetSnapshot returns the cached level analysis for a symbol
func (s *MemoryStorage) GetSnapshot(symbol string) (LevelSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.snapshots[symbol]
	return snap, exists
}

// LastUpdate returns when a symbol last received data
func (s *MemoryStorage) LastUpdate(symbol string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, exists := s.symbols[symbol]; exists {
		return d.lastUpdate
	}

	return time.Time{}
}
