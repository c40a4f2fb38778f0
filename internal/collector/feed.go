package collector

import (
	"fmt"
	"log"
	"sync"
	"time"

	"sltp-engine/internal/candles"
	"sltp-engine/internal/storage"
	"sltp-engine/pkg/types"

	"github.com/gorilla/websocket"
)

// FeedCollector collects forex price data from the Deriv WebSocket API
// and aggregates ticks into candles.
type FeedCollector struct {
	storage       *storage.MemoryStorage
	config        types.DataSourceConfig
	symbols       []string
	aggregators   map[string]*candles.Aggregator
	aggMu         sync.Mutex
	connections   map[string]*websocket.Conn
	connMu        sync.RWMutex
	subscribed    map[string]bool
	subMu         sync.RWMutex
	stopChan      chan bool
	symbolBatches [][]string
	tickCounts    map[string]int
}

// DerivMessage represents a Deriv API message
type DerivMessage struct {
	MsgType string                 `json:"msg_type"`
	Tick    *DerivTick             `json:"tick,omitempty"`
	Error   *DerivError            `json:"error,omitempty"`
	Echo    map[string]interface{} `json:"echo_req,omitempty"`
}

// DerivTick represents a price tick from Deriv
type DerivTick struct {
	Ask    float64 `json:"ask"`
	Bid    float64 `json:"bid"`
	Epoch  int64   `json:"epoch"`
	ID     string  `json:"id"`
	Pip    float64 `json:"pip_size"`
	Quote  float64 `json:"quote"`
	Symbol string  `json:"symbol"`
}

// DerivError represents an error from the Deriv API
type DerivError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewFeedCollector creates a new forex data collector
func NewFeedCollector(store *storage.MemoryStorage, config types.DataSourceConfig, symbols []string) *FeedCollector {
	// Split symbols into batches of 3 to avoid policy violations
	batches := [][]string{}
	batchSize := 3

	for i := 0; i < len(symbols); i += batchSize {
		end := i + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batches = append(batches, symbols[i:end])
	}

	period := time.Duration(config.CandlePeriod) * time.Second
	aggs := make(map[string]*candles.Aggregator, len(symbols))
	for _, symbol := range symbols {
		aggs[symbol] = candles.NewAggregator(symbol, period)
	}

	log.Printf("📊 Total symbols: %d, Batches: %d", len(symbols), len(batches))

	return &FeedCollector{
		storage:       store,
		config:        config,
		symbols:       symbols,
		aggregators:   aggs,
		connections:   make(map[string]*websocket.Conn),
		subscribed:    make(map[string]bool),
		stopChan:      make(chan bool),
		symbolBatches: batches,
		tickCounts:    make(map[string]int),
	}
}

// Start begins collecting data
func (c *FeedCollector) Start() error {
	log.Println("🚀 Starting multi-symbol data collector...")
	log.Printf("📈 Subscribing to %d symbols in %d batches", len(c.symbols), len(c.symbolBatches))

	// Start connection manager for each batch
	for batchIdx, batch := range c.symbolBatches {
		go c.connectionManager(batchIdx, batch)
		// Stagger connection starts
		time.Sleep(2 * time.Second)
	}

	return nil
}

// connectionManager handles connection and reconnection for a batch
func (c *FeedCollector) connectionManager(batchIdx int, symbols []string) {
	connKey := fmt.Sprintf("batch_%d", batchIdx)
	backoffDelay := c.config.ReconnectDelay

	for {
		select {
		case <-c.stopChan:
			return
		default:
			if err := c.connectBatch(connKey, symbols); err != nil {
				log.Printf("❌ Batch %d connection failed: %v", batchIdx, err)
				log.Printf("⏳ Retrying in %d seconds...", backoffDelay)
				time.Sleep(time.Duration(backoffDelay) * time.Second)

				// Exponential backoff up to 30 seconds
				backoffDelay *= 2
				if backoffDelay > 30 {
					backoffDelay = 30
				}
				continue
			}

			// Reset backoff on successful connection
			backoffDelay = c.config.ReconnectDelay

			// Subscribe to symbols in this batch
			for _, symbol := range symbols {
				if err := c.subscribe(connKey, symbol); err != nil {
					log.Printf("⚠️  Failed to subscribe to %s: %v", symbol, err)
				}
				time.Sleep(500 * time.Millisecond) // Stagger subscriptions
			}

			// Start reading messages
			c.readMessages(connKey)

			// Connection lost
			log.Printf("⚠️  Batch %d connection lost, reconnecting...", batchIdx)
			time.Sleep(time.Duration(c.config.ReconnectDelay) * time.Second)
		}
	}
}

// connectBatch establishes a WebSocket connection for a batch
func (c *FeedCollector) connectBatch(connKey string, symbols []string) error {
	conn, _, err := websocket.DefaultDialer.Dial(c.config.APIURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to data feed: %w", err)
	}

	c.connMu.Lock()
	c.connections[connKey] = conn
	c.connMu.Unlock()

	log.Printf("✅ Connected to data feed (%s) - %d symbols", connKey, len(symbols))

	// Start ping/pong to keep connection alive
	go c.keepAlive(connKey)

	return nil
}

// subscribe subscribes to a symbol's tick stream
func (c *FeedCollector) subscribe(connKey, symbol string) error {
	c.connMu.RLock()
	conn, exists := c.connections[connKey]
	c.connMu.RUnlock()

	if !exists || conn == nil {
		return fmt.Errorf("no connection for %s", connKey)
	}

	subscribeMsg := map[string]interface{}{
		"ticks":     symbolToFeed(symbol),
		"subscribe": 1,
	}

	if err := conn.WriteJSON(subscribeMsg); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", symbol, err)
	}

	c.subMu.Lock()
	c.subscribed[symbol] = true
	c.subMu.Unlock()

	log.Printf("📊 Subscribed to %s", symbol)

	return nil
}

// readMessages reads and processes incoming messages
func (c *FeedCollector) readMessages(connKey string) {
	defer func() {
		c.connMu.Lock()
		if conn, exists := c.connections[connKey]; exists && conn != nil {
			conn.Close()
		}
		delete(c.connections, connKey)
		c.connMu.Unlock()
	}()

	for {
		c.connMu.RLock()
		conn, exists := c.connections[connKey]
		c.connMu.RUnlock()

		if !exists || conn == nil {
			return
		}

		var msg DerivMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("⚠️  Read error (%s): %v", connKey, err)
			return
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes a message from the feed
func (c *FeedCollector) handleMessage(msg DerivMessage) {
	switch msg.MsgType {
	case "tick":
		if msg.Tick != nil {
			c.processTick(msg.Tick)
		}

	case "error":
		if msg.Error != nil {
			log.Printf("❌ API Error: %s - %s", msg.Error.Code, msg.Error.Message)
		}

	case "ping":
		return
	}
}

// processTick folds a price tick into the symbol's candle aggregator and
// stores the finished candle when the period rolls over.
func (c *FeedCollector) processTick(derivTick *DerivTick) {
	symbol := feedToSymbol(derivTick.Symbol)

	// Use mid price (average of bid and ask)
	price := (derivTick.Bid + derivTick.Ask) / 2
	if price == 0 {
		price = derivTick.Quote
	}

	tick := types.Tick{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Unix(derivTick.Epoch, 0),
		Epoch:     derivTick.Epoch,
	}

	c.storage.AddTick(symbol, tick)

	c.aggMu.Lock()
	agg, exists := c.aggregators[symbol]
	if !exists {
		c.aggMu.Unlock()
		return
	}
	finished, done := agg.Add(tick)
	c.tickCounts[symbol]++
	count := c.tickCounts[symbol]
	c.aggMu.Unlock()

	if done {
		c.storage.AddCandle(symbol, finished)
	}

	// Log periodically (every 500th tick)
	if count%500 == 0 {
		log.Printf("📈 %s: %.5f (%d ticks collected)", symbol, price, count)
	}
}

// keepAlive sends periodic pings to keep the connection alive
func (c *FeedCollector) keepAlive(connKey string) {
	ticker := time.NewTicker(time.Duration(c.config.PingInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn, exists := c.connections[connKey]
			c.connMu.RUnlock()

			if !exists || conn == nil {
				return
			}

			if err := conn.WriteJSON(map[string]interface{}{"ping": 1}); err != nil {
				log.Printf("⚠️  Ping failed (%s): %v", connKey, err)
				return
			}
		}
	}
}

// symbolToFeed converts a pair name like EURUSD to the feed's frxEURUSD.
func symbolToFeed(symbol string) string {
	if len(symbol) > 3 && symbol[:3] == "frx" {
		return symbol
	}
	return "frx" + symbol
}

// feedToSymbol strips the feed's frx prefix.
func feedToSymbol(feedSymbol string) string {
	if len(feedSymbol) > 3 && feedSymbol[:3] == "frx" {
		return feedSymbol[3:]
	}
	return feedSymbol
}

// Stop stops the collector
func (c *FeedCollector) Stop() {
	close(c.stopChan)

	c.connMu.Lock()
	defer c.connMu.Unlock()

	for key, conn := range c.connections {
		if conn != nil {
			conn.Close()
		}
		delete(c.connections, key)
	}

	log.Println("🛑 Multi-symbol collector stopped")
}
