package api

import (
	"log"
	"strconv"
	"time"

	"sltp-engine/internal/engine"
	"sltp-engine/internal/sessions"
	"sltp-engine/internal/storage"
	"sltp-engine/internal/strategy"
	"sltp-engine/pkg/types"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handler handles HTTP requests
type Handler struct {
	engine  *engine.Engine
	storage *storage.MemoryStorage
	config  types.APIConfig
}

// NewHandler creates a new API handler
func NewHandler(eng *engine.Engine, store *storage.MemoryStorage, config types.APIConfig) *Handler {
	return &Handler{
		engine:  eng,
		storage: store,
		config:  config,
	}
}

// Health handles GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	symbols := h.storage.GetActiveSymbols()

	return c.JSON(fiber.Map{
		"status":          "ok",
		"timestamp":       time.Now(),
		"active_symbols":  len(symbols),
		"symbols":         symbols,
		"active_sessions": sessions.Active(time.Now()),
	})
}

// GetSymbols handles GET /symbols
func (h *Handler) GetSymbols(c *fiber.Ctx) error {
	symbols := h.engine.Symbols()
	response := make([]fiber.Map, len(symbols))

	for i, symbol := range symbols {
		candleCount := h.storage.GetCandleCount(symbol)

		response[i] = fiber.Map{
			"symbol":       symbol,
			"candle_count": candleCount,
			"latest_price": h.storage.GetLatestPrice(symbol),
			"pip_value":    h.engine.PipValue(symbol),
			"active":       candleCount > 0,
		}
	}

	return c.JSON(response)
}

// GetStrategies handles GET /strategies
func (h *Handler) GetStrategies(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"stop_loss":   strategy.StopDescriptors(),
		"take_profit": strategy.TakeDescriptors(),
	})
}

// GetLevels handles GET /levels/:symbol
func (h *Handler) GetLevels(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	analysis, err := h.engine.Analyze(symbol)
	if err != nil {
		return c.Status(422).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(analysis)
}

// GetChartLevels handles GET /chart-levels/:symbol
func (h *Handler) GetChartLevels(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	maxLevels, err := strconv.Atoi(c.Query("max", "10"))
	if err != nil || maxLevels < 1 || maxLevels > 50 {
		maxLevels = 10
	}

	chartLevels, err := h.engine.ChartLevels(symbol, maxLevels)
	if err != nil {
		return c.Status(422).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"symbol":    symbol,
		"levels":    chartLevels,
		"timestamp": time.Now(),
	})
}

// GetWeeklyMap handles GET /weekly-map/:symbol
func (h *Handler) GetWeeklyMap(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	weeklyMap, err := h.engine.WeeklyMap(symbol)
	if err != nil {
		return c.Status(422).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(weeklyMap)
}

// GetPatterns handles GET /patterns/:symbol
func (h *Handler) GetPatterns(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	analysis, err := h.engine.Analyze(symbol)
	if err != nil {
		return c.Status(422).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"symbol":    symbol,
		"price":     analysis.Price,
		"patterns":  analysis.Patterns,
		"timestamp": analysis.ComputedAt,
	})
}

// GetSLTP handles GET /sltp/:symbol
// Query params: direction (buy|sell), entry (optional, defaults to last
// price), sl and tp (optional strategy ids).
func (h *Handler) GetSLTP(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	direction := c.Query("direction", "buy")
	if direction != "buy" && direction != "sell" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid direction (must be 'buy' or 'sell')",
		})
	}

	entry := 0.0
	if entryStr := c.Query("entry"); entryStr != "" {
		parsed, err := strconv.ParseFloat(entryStr, 64)
		if err != nil || parsed <= 0 {
			return c.Status(400).JSON(fiber.Map{
				"error": "Invalid entry price",
			})
		}
		entry = parsed
	}

	result, err := h.engine.ComputeSLTP(symbol, entry, direction == "buy", c.Query("sl"), c.Query("tp"))
	if err != nil {
		return c.Status(422).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// GetSessions handles GET /sessions
func (h *Handler) GetSessions(c *fiber.Ctx) error {
	now := time.Now()
	active := sessions.Active(now)

	all := []sessions.Info{}
	for _, s := range []sessions.Session{sessions.Sydney, sessions.Tokyo, sessions.London, sessions.NewYork} {
		if info, ok := sessions.Lookup(s); ok {
			all = append(all, info)
		}
	}

	return c.JSON(fiber.Map{
		"timestamp": now,
		"active":    active,
		"sessions":  all,
	})
}

// WebSocketHandler handles WebSocket connections for real-time level
// updates. Pushes a fresh analysis every stream interval.
func (h *Handler) WebSocketHandler(c *websocket.Conn) {
	symbol := c.Params("symbol")

	interval := time.Duration(h.config.StreamInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	log.Printf("📡 WebSocket connected: %s (interval: %s)", symbol, interval)

	defer func() {
		c.Close()
		log.Printf("📡 WebSocket disconnected: %s", symbol)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Send initial analysis immediately
	analysis, err := h.engine.Analyze(symbol)
	if err == nil {
		if err := c.WriteJSON(analysis); err != nil {
			log.Printf("⚠️ WebSocket write error: %v", err)
			return
		}
	}

	for range ticker.C {
		analysis, err := h.engine.Analyze(symbol)
		if err != nil {
			log.Printf("⚠️ Analysis error: %v", err)
			continue
		}

		if err := c.WriteJSON(analysis); err != nil {
			log.Printf("⚠️ WebSocket write error: %v", err)
			return
		}

		// Log strong level counts occasionally
		strong := 0
		for _, l := range analysis.Levels {
			if l.StrengthScore >= 60 {
				strong++
			}
		}
		if strong > 0 {
			log.Printf("🎯 %s: %d strong levels @ %.5f", symbol, strong, analysis.Price)
		}
	}
}
