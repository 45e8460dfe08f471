package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"parcelsync/config"
	"parcelsync/geo"
	"parcelsync/httputil"
	"parcelsync/logging"
	"parcelsync/models"
	"parcelsync/provider"
	"parcelsync/scheduler"
	"parcelsync/services"
	"parcelsync/storage"
	"parcelsync/sync"
	"parcelsync/workers"
)

var (
	syncNow    = flag.Bool("sync", false, "Run sync once and exit")
	refreshNow = flag.Bool("refresh", false, "Run status refresh once and exit")
	markets    = flag.String("markets", "", "Comma-separated market ids (with -sync; default all enabled)")
	status     = flag.Bool("status", false, "Print recent runs and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile := logging.Setup(cfg.LogPath)
	defer logFile.Close()

	log.Println("Starting parcelsync...")
	log.Printf("Loaded %d market configs", len(cfg.Markets))
	for id, market := range cfg.Markets {
		log.Printf("  - %s (%s)", market.Name, id)
	}

	// Status only needs the local ops database.
	if *status {
		printStatus(cfg)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))

	sqliteStore, err := storage.NewSQLiteStore(cfg.OpsDBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.OpsDBPath)

	providerOpts := []provider.ClientOption{
		provider.WithHTTPClient(httputil.NewClient(cfg.Provider.Timeout)),
	}
	if cfg.Provider.BaseURL != "" {
		providerOpts = append(providerOpts, provider.WithBaseURL(cfg.Provider.BaseURL))
	}
	client := provider.NewClient(cfg.Provider.APIKey, providerOpts...)

	companyService := services.NewCompanyService(pgStore)
	propertyService := services.NewPropertyService(pgStore)
	checkpoints := sync.NewCheckpointManager(pgStore, cfg.Sync.DefaultStartDate)
	engine := sync.NewEngine(cfg, client, geo.NewCountyResolver(), companyService, propertyService, checkpoints)
	orchestrator := sync.NewOrchestrator(cfg, engine, sqliteStore)

	refreshWorker := workers.NewStatusRefreshWorker(pgStore, client, cfg.Refresh.BatchSize, cfg.Sync.BatchDelay)
	refreshWorker.SetLogger(func(level models.LogLevel, source, message string) {
		if err := sqliteStore.Log(nil, level, message, source); err != nil {
			log.Printf("Warning: failed to write worker log: %v", err)
		}
	})

	if *syncNow {
		runOnce(ctx, orchestrator, *markets)
		return
	}

	if *refreshNow {
		log.Println("Running status refresh...")
		refreshWorker.RunOnce(ctx)
		log.Println("Status refresh complete!")
		return
	}

	// Daemon mode
	sched := scheduler.New(cfg, orchestrator)
	sched.SetWorkers(refreshWorker)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go refreshWorker.Run(ctx, cfg.Refresh.Interval)
	log.Println("Status refresh worker started")

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

func runOnce(ctx context.Context, orchestrator *sync.Orchestrator, marketList string) {
	var ids []string
	if marketList != "" {
		ids = strings.Split(marketList, ",")
	}

	log.Println("Running sync...")
	report, err := orchestrator.RunSync(ctx, ids)
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	for _, summary := range report.PerMarket {
		log.Printf("%s: %d processed, %d new, %d updated, %d companies added, watermark %s",
			summary.Market, summary.TotalProcessed, summary.TotalInserted, summary.TotalUpdated,
			summary.TotalCompaniesAdded, summary.FinalWatermark.Format("2006-01-02"))
	}
	for _, me := range report.Errors {
		log.Printf("FAILED %s: %s", me.Market, me.Message)
	}
	if report.HasErrors() {
		os.Exit(1)
	}
	log.Println("Sync complete!")
}

func printStatus(cfg *config.Config) {
	store, err := storage.NewSQLiteStore(cfg.OpsDBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(10)
	if err != nil {
		log.Fatalf("Failed to read runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return
	}

	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("#%d %s [%s] %s -> %s markets=%d/%d processed=%d new=%d updated=%d companies=%d\n",
			run.ID, run.Trigger, run.Status,
			run.StartedAt.Format("2006-01-02 15:04:05"), finished,
			run.MarketsTotal-run.MarketsFailed, run.MarketsTotal,
			run.TotalProcessed, run.TotalInserted, run.TotalUpdated, run.CompaniesAdded)
		if run.ErrorMessage != "" {
			fmt.Printf("    error: %s\n", run.ErrorMessage)
		}
	}
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
