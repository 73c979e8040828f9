package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"digit-observer/src/analysis"
	"digit-observer/src/config"
	"digit-observer/src/control"
	"digit-observer/src/feed"
	"digit-observer/src/helpers"
	"digit-observer/src/interfaces"
	"digit-observer/src/logger"
	"digit-observer/src/models"
	"digit-observer/src/server"
	"digit-observer/src/storage"
	"digit-observer/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.MConfig, config.Name)

	// 2. Setup Storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. Setup Components
	var source interfaces.ITickSource = feed.NewDerivTickSource(config.Feed, appLogger)
	var analyzer *analysis.AnalysisFacade = analysis.NewAnalysisFacade(config.MConfig, appLogger)
	var srv interfaces.IDataExchanger = server.NewDashboardServer(config.MConfig, appLogger)
	errHandler := helpers.NewErrorHandler()

	// 4. Memory Manager
	maxPoints := utils.CalculateMaxDataPoints(config.Feed.DataRetentionDays)
	memManager := utils.NewMemoryManager(512, maxPoints)

	// 5. gRPC health endpoint for external supervisors
	healthSrv := control.NewHealthServer(config.MConfig, appLogger)
	if config.GrpcPort > 0 {
		go func() {
			if err := healthSrv.Start(); err != nil {
				appLogger.Error("gRPC health server failed: %v", err)
			}
		}()
		defer healthSrv.Stop()
	}

	// 6. Start Dashboard Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Main Loop (Push Model)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	updatesChan := make(chan []models.MTick, 100)

	// Start Source
	if err := source.Start(ctx, updatesChan, wrapWg); err != nil {
		appLogger.Critical("Failed to start source: %v", err)
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Starting data loop (Push Model)...")

	for {
		select {
		case ticks, ok := <-updatesChan:
			if !ok {
				appLogger.Info("Tick source closed channel.")
				return
			}
			if len(ticks) == 0 {
				continue
			}

			startProcess := time.Now()
			symbol := ticks[0].Symbol
			appLogger.Info("Received batch of %d ticks for %s", len(ticks), symbol)

			// Update Memory Manager
			for _, t := range ticks {
				memManager.AddDataPoint(symbol, t)
			}

			// Persist raw ticks
			if err := db.SaveTicksBulk(ticks); err != nil {
				errHandler.Handle(err, "tick persistence")
			}

			// Analyze over the full stored history so windows larger than one
			// batch still fill up
			history := memManager.GetHistory(symbol)
			windowStats := analyzer.AnalyzeWindows(history, config.WindowsAgg)

			var statsList []models.MDigitStats
			for _, s := range windowStats {
				statsList = append(statsList, s)
			}
			if err := db.SaveDigitStats(statsList); err != nil {
				errHandler.Handle(err, "digit stats persistence")
			}

			elapsed := time.Since(startProcess).Seconds()

			// Broadcast
			latest, _ := memManager.GetLatest(symbol)
			payload := map[string]interface{}{
				"type":        "UPDATE",
				"raw_data":    map[string]interface{}{symbol: latest},
				"digit_stats": map[string]interface{}{symbol: windowStats},
				"timestamp":   time.Now().Unix(),
				"processing_metrics": models.MProcessingMetrics{
					AnalysisTimeSeconds: elapsed,
					TicksProcessed:      len(ticks),
					WindowsProcessed:    len(windowStats),
				},
			}

			srv.UpdateAllDatas(payload)
			srv.Broadcast(payload)

			// Cleanup
			db.CleanupOldData()

		case <-quit:
			appLogger.Info("Shutting down...")
			healthSrv.SetServing(false)
			cancel()      // Signal source to stop
			wrapWg.Wait() // Wait for source to close
			return
		}
	}
}
