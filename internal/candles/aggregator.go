package candles

import (
	"time"

	"sltp-engine/pkg/types"
)

// TicksToCandles converts ticks to OHLC candles aligned to period
// boundaries. Ticks must arrive in chronological order.
func TicksToCandles(ticks []types.Tick, period time.Duration) []types.Candle {
	if len(ticks) == 0 {
		return []types.Candle{}
	}

	candles := []types.Candle{}
	var currentCandle *types.Candle

	for _, tick := range ticks {
		// Align timestamp to candle period
		candleTime := tick.Timestamp.Truncate(period)

		// Start new candle or continue existing
		if currentCandle == nil || !currentCandle.Timestamp.Equal(candleTime) {
			// Save previous candle
			if currentCandle != nil {
				candles = append(candles, *currentCandle)
			}

			// Start new candle
			currentCandle = &types.Candle{
				Symbol:    tick.Symbol,
				Open:      tick.Price,
				High:      tick.Price,
				Low:       tick.Price,
				Close:     tick.Price,
				Timestamp: candleTime,
			}
		} else {
			// Update existing candle
			if tick.Price > currentCandle.High {
				currentCandle.High = tick.Price
			}
			if tick.Price < currentCandle.Low {
				currentCandle.Low = tick.Price
			}
			currentCandle.Close = tick.Price
		}
	}

	// Add last candle
	if currentCandle != nil {
		candles = append(candles, *currentCandle)
	}

	return candles
}

// Aggregator builds candles incrementally from a live tick stream,
// emitting each candle when its period rolls over. One aggregator per
// symbol.
type Aggregator struct {
	symbol  string
	period  time.Duration
	current *types.Candle
}

// NewAggregator creates an aggregator for a symbol and candle period.
func NewAggregator(symbol string, period time.Duration) *Aggregator {
	return &Aggregator{symbol: symbol, period: period}
}

// Add folds a tick into the current candle. When the tick opens a new
// period the finished candle is returned with ok=true.
func (a *Aggregator) Add(tick types.Tick) (types.Candle, bool) {
	candleTime := tick.Timestamp.Truncate(a.period)

	if a.current == nil {
		a.current = &types.Candle{
			Symbol:    a.symbol,
			Open:      tick.Price,
			High:      tick.Price,
			Low:       tick.Price,
			Close:     tick.Price,
			Timestamp: candleTime,
		}
		return types.Candle{}, false
	}

	if a.current.Timestamp.Equal(candleTime) {
		if tick.Price > a.current.High {
			a.current.High = tick.Price
		}
		if tick.Price < a.current.Low {
			a.current.Low = tick.Price
		}
		a.current.Close = tick.Price
		return types.Candle{}, false
	}

	finished := *a.current
	a.current = &types.Candle{
		Symbol:    a.symbol,
		Open:      tick.Price,
		High:      tick.Price,
		Low:       tick.Price,
		Close:     tick.Price,
		Timestamp: candleTime,
	}
	return finished, true
}

// Current returns the in-progress candle, ok=false before the first tick.
func (a *Aggregator) Current() (types.Candle, bool) {
	if a.current == nil {
		return types.Candle{}, false
	}
	return *a.current, true
}
