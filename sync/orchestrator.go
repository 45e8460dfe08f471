package sync

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"parcelsync/config"
	"parcelsync/models"
	"parcelsync/storage"
)

// Orchestrator runs the engine across markets sequentially and keeps the
// operational run history.
type Orchestrator struct {
	cfg    *config.Config
	engine *Engine
	ops    *storage.SQLiteStore
}

func NewOrchestrator(cfg *config.Config, engine *Engine, ops *storage.SQLiteStore) *Orchestrator {
	return &Orchestrator{cfg: cfg, engine: engine, ops: ops}
}

// RunSync syncs the named markets, or every enabled market when none are
// named. Markets run one at a time; a failing market is reported and the
// rest still run.
func (o *Orchestrator) RunSync(ctx context.Context, marketIDs []string) (*models.SyncReport, error) {
	return o.run(ctx, marketIDs, models.TriggerManual)
}

// RunScheduled is the cron entrypoint: all enabled markets.
func (o *Orchestrator) RunScheduled(ctx context.Context) (*models.SyncReport, error) {
	return o.run(ctx, nil, models.TriggerScheduled)
}

func (o *Orchestrator) run(ctx context.Context, marketIDs []string, trigger string) (*models.SyncReport, error) {
	// Credentials and connectivity problems abort before any market runs.
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	markets, err := o.resolveMarkets(marketIDs)
	if err != nil {
		return nil, err
	}

	report := &models.SyncReport{StartedAt: time.Now()}
	run := &models.SyncRun{
		Trigger:      trigger,
		StartedAt:    report.StartedAt,
		Status:       models.RunStatusRunning,
		MarketsTotal: len(markets),
	}

	runID, err := o.ops.CreateRun(run)
	if err != nil {
		log.Printf("Warning: failed to create run record: %v", err)
	} else {
		run.ID = runID
	}

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		run.Status = models.RunStatusCompleted
		if len(markets) > 0 && run.MarketsFailed == len(markets) {
			run.Status = models.RunStatusFailed
		}
		if len(report.Errors) > 0 {
			msgs := make([]string, len(report.Errors))
			for i, me := range report.Errors {
				msgs[i] = me.Message
			}
			run.ErrorMessage = strings.Join(msgs, "; ")
		}
		if run.ID != 0 {
			if err := o.ops.UpdateRun(run); err != nil {
				log.Printf("Warning: failed to finalize run record: %v", err)
			}
		}
	}()

	var runIDPtr *int64
	if run.ID != 0 {
		runIDPtr = &run.ID
	}
	logf := func(level models.LogLevel, market, message string) {
		o.log(runIDPtr, level, market, message)
	}

	for _, market := range markets {
		o.log(runIDPtr, models.LogLevelInfo, market.ID, fmt.Sprintf("starting sync for %s", market.Name))

		summary, err := o.engine.SyncMarket(ctx, market, logf)
		if summary != nil {
			report.PerMarket = append(report.PerMarket, *summary)
			run.TotalProcessed += summary.TotalProcessed
			run.TotalInserted += summary.TotalInserted
			run.TotalUpdated += summary.TotalUpdated
			run.CompaniesAdded += summary.TotalCompaniesAdded
		}
		if err != nil {
			report.Errors = append(report.Errors, models.MarketError{Market: market.ID, Message: err.Error()})
			run.MarketsFailed++
			continue
		}

		o.log(runIDPtr, models.LogLevelInfo, market.ID, fmt.Sprintf(
			"finished %s: %d processed, %d new, %d updated, %d companies added",
			market.ID, summary.TotalProcessed, summary.TotalInserted, summary.TotalUpdated, summary.TotalCompaniesAdded))
	}

	report.FinishedAt = time.Now()
	return report, nil
}

// resolveMarkets turns the requested ids into configs. With no ids, every
// enabled market runs in stable id order.
func (o *Orchestrator) resolveMarkets(ids []string) ([]*config.MarketConfig, error) {
	if len(ids) == 0 {
		var markets []*config.MarketConfig
		for _, m := range o.cfg.Markets {
			if !m.Disabled {
				markets = append(markets, m)
			}
		}
		sort.Slice(markets, func(i, j int) bool { return markets[i].ID < markets[j].ID })
		if len(markets) == 0 {
			return nil, fmt.Errorf("no enabled markets configured")
		}
		return markets, nil
	}

	markets := make([]*config.MarketConfig, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		m, ok := o.cfg.Markets[id]
		if !ok {
			return nil, fmt.Errorf("unknown market %q", id)
		}
		markets = append(markets, m)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("no markets requested")
	}
	return markets, nil
}

// log writes to both the process log and the run-scoped operational log.
func (o *Orchestrator) log(runID *int64, level models.LogLevel, market, message string) {
	log.Printf("[%s] %s", market, message)
	if err := o.ops.Log(runID, level, message, market); err != nil {
		log.Printf("Warning: failed to write sync log: %v", err)
	}
}
