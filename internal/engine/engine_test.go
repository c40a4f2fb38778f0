package engine

import (
	"math"
	"testing"
	"time"

	"sltp-engine/internal/storage"
	"sltp-engine/pkg/types"
)

func seedCandles(store *storage.MemoryStorage, symbol string, n int) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		mid := 1.10 + 0.01*math.Sin(float64(i)/6)
		store.AddCandle(symbol, types.Candle{
			Symbol:    symbol,
			Open:      mid - 0.0003,
			High:      mid + 0.0010,
			Low:       mid - 0.0010,
			Close:     mid + 0.0003,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func testConfig() types.Config {
	return types.Config{
		Symbols:   []string{"EURUSD"},
		PipValues: map[string]float64{"EURUSD": 0.0001},
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	store := storage.NewMemoryStorage(100)
	eng := NewEngine(store, testConfig())

	seedCandles(store, "EURUSD", 5)

	if _, err := eng.Analyze("EURUSD"); err == nil {
		t.Fatal("5 candles must not be enough for analysis")
	}
}

func TestAnalyzeProducesLevels(t *testing.T) {
	store := storage.NewMemoryStorage(100)
	eng := NewEngine(store, testConfig())

	seedCandles(store, "EURUSD", 60)

	analysis, err := eng.Analyze("EURUSD")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Symbol != "EURUSD" {
		t.Fatalf("symbol want EURUSD, got %s", analysis.Symbol)
	}
	if len(analysis.Levels) == 0 {
		t.Fatal("expected levels from 60 oscillating candles")
	}
	if analysis.ID == "" {
		t.Fatal("analysis id missing")
	}

	// Snapshot cached in storage for cheap reads.
	snap, ok := store.GetSnapshot("EURUSD")
	if !ok {
		t.Fatal("snapshot not stored")
	}
	if len(snap.Levels) != len(analysis.Levels) {
		t.Fatalf("snapshot levels want %d, got %d", len(analysis.Levels), len(snap.Levels))
	}

	// Second call within 3 seconds reuses the cached result.
	again, err := eng.Analyze("EURUSD")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if again.ID != analysis.ID {
		t.Fatal("cached analysis should be reused")
	}
}

func TestComputeSLTPDefaultsEntryToLastPrice(t *testing.T) {
	store := storage.NewMemoryStorage(100)
	eng := NewEngine(store, testConfig())

	seedCandles(store, "EURUSD", 60)

	res, err := eng.ComputeSLTP("EURUSD", 0, true, "fixed_pips", "fixed_pips")
	if err != nil {
		t.Fatalf("sltp: %v", err)
	}
	if res.Entry != store.GetLatestPrice("EURUSD") {
		t.Fatalf("entry should default to last price, got %v", res.Entry)
	}
	if res.Direction != "buy" {
		t.Fatalf("direction want buy, got %s", res.Direction)
	}
	if res.StopLoss.StopLoss >= res.Entry {
		t.Fatal("buy stop must sit below entry")
	}
	if res.TakeProfit.TakeProfit <= res.Entry {
		t.Fatal("buy target must sit above entry")
	}
}

func TestComputeSLTPUnknownStrategy(t *testing.T) {
	store := storage.NewMemoryStorage(100)
	eng := NewEngine(store, testConfig())

	seedCandles(store, "EURUSD", 60)

	if _, err := eng.ComputeSLTP("EURUSD", 0, true, "martingale", ""); err == nil {
		t.Fatal("unknown stop strategy must error")
	}
	if _, err := eng.ComputeSLTP("EURUSD", 0, true, "", "martingale"); err == nil {
		t.Fatal("unknown take strategy must error")
	}
}

func TestPipValueFallback(t *testing.T) {
	eng := NewEngine(storage.NewMemoryStorage(10), testConfig())

	if got := eng.PipValue("EURUSD"); got != 0.0001 {
		t.Fatalf("configured pip want 0.0001, got %v", got)
	}
	if got := eng.PipValue("XAUUSD"); got != 0.0001 {
		t.Fatalf("unconfigured pip should default to 0.0001, got %v", got)
	}
}
