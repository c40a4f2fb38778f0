package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sltp-engine/internal/api"
	"sltp-engine/internal/collector"
	"sltp-engine/internal/config"
	"sltp-engine/internal/engine"
	"sltp-engine/internal/storage"
	"sltp-engine/pkg/types"

	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	printSymbol := flag.String("print", "", "print a level table for one symbol and exit")
	flag.Parse()

	log.Println("🚀 SLTP Engine Starting...")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("✅ Configuration loaded: %d symbols configured", len(cfg.Symbols))

	// Initialize storage
	store := storage.NewMemoryStorage(cfg.Storage.MaxCandlesInMemory)
	log.Println("✅ Storage initialized")

	// Initialize analysis engine
	eng := engine.NewEngine(store, cfg)
	log.Println("✅ Analysis engine initialized")

	// Initialize feed collector
	feed := collector.NewFeedCollector(store, cfg.DataSource, cfg.Symbols)
	if err := feed.Start(); err != nil {
		log.Fatalf("❌ Failed to start feed collector: %v", err)
	}

	// One-shot mode: wait for data, print levels, exit
	if *printSymbol != "" {
		runPrintMode(eng, store, feed, *printSymbol)
		return
	}

	// Wait for initial data collection
	log.Println("⏳ Collecting initial price data (15 seconds)...")
	time.Sleep(15 * time.Second)

	activeSymbols := store.GetActiveSymbols()
	log.Printf("✅ Data collection started: %d symbols active", len(activeSymbols))

	if len(activeSymbols) == 0 {
		log.Println("⚠️  No symbols active yet, but continuing...")
	}

	// Start background tasks
	go startBackgroundTasks(eng)

	// Initialize and start API server
	server := api.NewServer(eng, store, cfg.API)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("❌ Failed to start API server: %v", err)
		}
	}()

	// Print usage instructions
	printUsageInstructions(cfg)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ System ready! Press Ctrl+C to stop")
	<-quit

	log.Println("\n🛑 Shutting down gracefully...")

	// Stop collector
	feed.Stop()

	// Shutdown API server
	if err := server.Shutdown(); err != nil {
		log.Printf("⚠️  Error during shutdown: %v", err)
	}

	log.Println("👋 Goodbye!")
}

// runPrintMode waits until the symbol has enough candles, renders a
// level table to stdout and exits.
func runPrintMode(eng *engine.Engine, store *storage.MemoryStorage, feed *collector.FeedCollector, symbol string) {
	defer feed.Stop()

	log.Printf("⏳ Waiting for %s candle data...", symbol)

	deadline := time.Now().Add(5 * time.Minute)
	for time.Now().Before(deadline) {
		analysis, err := eng.Analyze(symbol)
		if err == nil {
			printLevelTable(analysis)
			return
		}
		time.Sleep(10 * time.Second)
	}

	log.Fatalf("❌ No data for %s (have %d candles)", symbol, store.GetCandleCount(symbol))
}

// printLevelTable renders the detected levels as a terminal table.
func printLevelTable(analysis engine.Analysis) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s @ %.5f", analysis.Symbol, analysis.Price))
	t.AppendHeader(table.Row{"#", "Price", "Type", "Side", "Score", "Class", "Touches", "Dist (pips)", "TF"})

	for i, l := range analysis.Levels {
		side := "resistance"
		if l.IsSupport {
			side = "support"
		}
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.5f", l.Price),
			l.Type,
			side,
			fmt.Sprintf("%.0f", l.StrengthScore),
			l.StrengthClass,
			l.Touches,
			fmt.Sprintf("%.1f", l.DistanceFromPips),
			l.Timeframe,
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

// startBackgroundTasks starts background maintenance tasks
func startBackgroundTasks(eng *engine.Engine) {
	// Cache cleanup every 30 seconds
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		eng.CleanupCache()
	}
}

// printUsageInstructions prints API usage instructions
func printUsageInstructions(cfg types.Config) {
	log.Println("\n" + strings.Repeat("=", 70))
	log.Println("📚 API USAGE INSTRUCTIONS")
	log.Println(strings.Repeat("=", 70))
	log.Printf("\n📡 ENDPOINTS:\n")
	log.Printf("  GET  /api/health                            - Health check\n")
	log.Printf("  GET  /api/symbols                           - List symbols\n")
	log.Printf("  GET  /api/strategies                        - Strategy catalog\n")
	log.Printf("  GET  /api/levels/:symbol                    - S/R level analysis\n")
	log.Printf("  GET  /api/chart-levels/:symbol?max=10       - Display-ready levels\n")
	log.Printf("  GET  /api/weekly-map/:symbol                - Weekly pivot/fib map\n")
	log.Printf("  GET  /api/patterns/:symbol                  - Pattern detection\n")
	log.Printf("  GET  /api/sltp/:symbol?direction=buy&sl=atr - SL/TP calculation\n")
	log.Printf("  GET  /api/sessions                          - Trading sessions\n")
	log.Printf("  WS   /api/stream/:symbol                    - Real-time levels\n")
	log.Printf("\n💡 EXAMPLES:\n")
	log.Printf("  curl http://localhost:%d/api/levels/EURUSD\n", cfg.API.Port)
	log.Printf("  curl \"http://localhost:%d/api/sltp/EURUSD?direction=buy&sl=pin_bar&tp=risk_reward\"\n", cfg.API.Port)
	log.Println("\n" + strings.Repeat("=", 70) + "\n")
}
