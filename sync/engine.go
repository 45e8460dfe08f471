// Package sync implements the incremental market sync: paged transaction
// fetch, address-level dedup, batch enrichment, buyer classification and
// checkpointed persistence.
package sync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"parcelsync/config"
	"parcelsync/identity"
	"parcelsync/models"
	"parcelsync/provider"
	"parcelsync/services"
)

// TransactionSource is the provider surface the engine drives: paged
// transaction search plus bulk detail lookup.
type TransactionSource interface {
	ListTransactions(ctx context.Context, market string, dateMin, dateMax time.Time, page, pageSize int, sort string) ([]models.RawTransactionRecord, error)
	FetchPropertyDetails(ctx context.Context, addresses []string) ([]models.DetailResult, error)
}

// GeoResolver fills in the county when the provider payload lacks one.
type GeoResolver interface {
	ReverseGeocodeCounty(ctx context.Context, lat, lng float64) (string, error)
}

// LogFunc receives engine progress for run-scoped logging.
type LogFunc func(level models.LogLevel, market, message string)

type runState string

const (
	stateIdle          runState = "idle"
	stateFetching      runState = "fetching"
	stateEnriching     runState = "enriching"
	stateCheckpointing runState = "checkpointing"
	stateFailed        runState = "failed"
)

// Engine syncs one market at a time. All cross-record state lives in the
// per-market run value, so engines are safe to reuse across runs.
type Engine struct {
	cfg         *config.Config
	source      TransactionSource
	geo         GeoResolver
	companies   *services.CompanyService
	properties  *services.PropertyService
	checkpoints *CheckpointManager
}

func NewEngine(cfg *config.Config, source TransactionSource, geo GeoResolver, companies *services.CompanyService, properties *services.PropertyService, checkpoints *CheckpointManager) *Engine {
	return &Engine{
		cfg:         cfg,
		source:      source,
		geo:         geo,
		companies:   companies,
		properties:  properties,
		checkpoints: checkpoints,
	}
}

// marketRun carries the state of a single market sync: checkpoint, company
// cache, counters and the newest transaction date seen so far.
type marketRun struct {
	market       *config.MarketConfig
	state        runState
	cp           *models.SyncCheckpoint
	cache        services.CompanyCache
	summary      *models.MarketSummary
	lastBoundary time.Time
	sincePersist int
	logf         LogFunc
}

// SyncMarket runs the full fetch, enrich and persist cycle for one market.
// The summary is returned even when the market fails partway so the caller
// can still report partial progress.
func (e *Engine) SyncMarket(ctx context.Context, market *config.MarketConfig, logf LogFunc) (*models.MarketSummary, error) {
	if logf == nil {
		logf = func(models.LogLevel, string, string) {}
	}

	start, err := market.StartTime()
	if err != nil {
		return nil, fmt.Errorf("market %s start date: %w", market.ID, err)
	}
	cp, err := e.checkpoints.Load(ctx, market.ID, start)
	if err != nil {
		return nil, err
	}

	run := &marketRun{
		market: market,
		state:  stateIdle,
		cp:     cp,
		summary: &models.MarketSummary{
			Market:           market.ID,
			DateRangeCovered: models.DateRange{From: cp.WatermarkDate},
		},
		logf: logf,
	}

	cache, err := e.companies.LoadCache(ctx)
	if err != nil {
		return run.summary, e.failMarket(run, err)
	}
	run.cache = cache

	records, err := e.fetchAll(ctx, run)
	if err != nil {
		return run.summary, e.failMarket(run, err)
	}

	if err := e.enrich(ctx, run, records); err != nil {
		return run.summary, e.failMarket(run, err)
	}

	run.state = stateCheckpointing
	if err := e.checkpoints.Advance(ctx, run.cp, run.lastBoundary, run.sincePersist); err != nil {
		return run.summary, e.failMarket(run, err)
	}
	run.sincePersist = 0
	run.state = stateIdle

	run.summary.FinalWatermark = run.cp.WatermarkDate
	run.summary.DateRangeCovered.To = run.cp.WatermarkDate
	return run.summary, nil
}

// fetchAll pulls transaction pages from the watermark forward until a short
// page. A full page means more data; anything less ends the market's fetch.
// Fetch errors abort the market, there are no per-page retries.
func (e *Engine) fetchAll(ctx context.Context, run *marketRun) ([]models.RawTransactionRecord, error) {
	run.state = stateFetching
	from := run.cp.WatermarkDate
	to := time.Now()
	pageSize := e.cfg.Sync.PageSize

	var all []models.RawTransactionRecord
	for page := 1; ; page++ {
		recs, err := e.source.ListTransactions(ctx, run.market.ID, from, to, page, pageSize, provider.SortSaleDateAsc)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d for %s: %w", page, run.market.ID, err)
		}
		if len(recs) == 0 {
			break
		}

		var pageBoundary time.Time
		for i := range recs {
			if b := recs[i].BoundaryDate(); b.After(pageBoundary) {
				pageBoundary = b
			}
		}
		if pageBoundary.After(run.lastBoundary) {
			run.lastBoundary = pageBoundary
		}

		all = append(all, recs...)
		run.logf(models.LogLevelInfo, run.market.ID,
			fmt.Sprintf("page %d: %d transactions through %s", page, len(recs), pageBoundary.Format("2006-01-02")))

		// The watermark advances page by page; processed counts land
		// during enrichment.
		if err := e.checkpoints.Advance(ctx, run.cp, pageBoundary, 0); err != nil {
			run.logf(models.LogLevelWarn, run.market.ID, fmt.Sprintf("checkpoint save failed: %v", err))
		}

		if len(recs) < pageSize {
			break
		}
	}
	return all, nil
}

// enrich dedups the fetched records by address and walks them through the
// provider's bulk detail endpoint in rate-limited batches.
func (e *Engine) enrich(ctx context.Context, run *marketRun, records []models.RawTransactionRecord) error {
	run.state = stateEnriching

	deduped := DedupeByAddress(records)
	if len(deduped) == 0 {
		return nil
	}
	run.logf(models.LogLevelInfo, run.market.ID,
		fmt.Sprintf("%d transactions, %d unique addresses", len(records), len(deduped)))

	batchSize := e.cfg.Sync.BatchSize
	for start := 0; start < len(deduped); start += batchSize {
		end := start + batchSize
		if end > len(deduped) {
			end = len(deduped)
		}

		if start > 0 {
			// The provider rate-limits bulk detail lookups.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.cfg.Sync.BatchDelay):
			}
		}

		if err := e.enrichBatch(ctx, run, deduped[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) enrichBatch(ctx context.Context, run *marketRun, batch []models.RawTransactionRecord) error {
	addresses := make([]string, len(batch))
	byAddress := make(map[string]*models.RawTransactionRecord, len(batch))
	for i := range batch {
		rec := &batch[i]
		addresses[i] = fmt.Sprintf("%s, %s, %s", rec.Address, rec.City, rec.State)
		byAddress[identity.AddressKey(rec.Address, rec.City, rec.State)] = rec
	}

	results, err := e.source.FetchPropertyDetails(ctx, addresses)
	if errors.Is(err, provider.ErrMalformedBatch) {
		// Skip the whole batch, do not retry. The fetch loop already
		// advanced the watermark past these records.
		run.logf(models.LogLevelWarn, run.market.ID,
			fmt.Sprintf("skipping malformed detail batch of %d: %v", len(batch), err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enrich batch for %s: %w", run.market.ID, err)
	}

	for i := range results {
		res := &results[i]
		if res.Error != "" {
			run.logf(models.LogLevelWarn, run.market.ID,
				fmt.Sprintf("detail lookup failed for %q: %s", res.Address, res.Error))
			continue
		}
		if res.Property == nil {
			continue
		}

		rec, ok := byAddress[identity.Normalize(res.Address)]
		if !ok {
			run.logf(models.LogLevelWarn, run.market.ID,
				fmt.Sprintf("detail result for unknown address %q", res.Address))
			continue
		}

		if err := e.processRecord(ctx, run, rec, res.Property); err != nil {
			run.logf(models.LogLevelError, run.market.ID, fmt.Sprintf("process %q: %v", res.Address, err))
			continue
		}

		if run.sincePersist >= e.cfg.Sync.CheckpointEvery {
			if err := e.checkpoints.Advance(ctx, run.cp, run.lastBoundary, run.sincePersist); err != nil {
				run.logf(models.LogLevelWarn, run.market.ID, fmt.Sprintf("checkpoint save failed: %v", err))
			} else {
				run.sincePersist = 0
			}
		}
	}
	return nil
}

// processRecord classifies one enriched record and persists it if the buyer
// is corporate. Non-corporate buyers only matter when they bought a
// property already tracked, which marks it sold.
func (e *Engine) processRecord(ctx context.Context, run *marketRun, rec *models.RawTransactionRecord, detail *models.PropertyDetail) error {
	if Classify(rec.BuyerName, rec.OwnershipCode) != ClassCorporate {
		return e.noteNonCorporate(ctx, run, rec, detail)
	}

	if e.cfg.Sync.ExcludeNewConstruction && detail.NewConstruction {
		return nil
	}
	if avmDiverges(detail, e.cfg.Sync.AVMDivergenceThreshold) {
		run.logf(models.LogLevelInfo, run.market.ID,
			fmt.Sprintf("skipping %q: AVM diverges from sale price", detail.Address))
		return nil
	}

	county := detail.County
	if county == "" && detail.Lat != nil && detail.Lng != nil {
		resolved, err := e.geo.ReverseGeocodeCounty(ctx, *detail.Lat, *detail.Lng)
		if err != nil {
			run.logf(models.LogLevelWarn, run.market.ID,
				fmt.Sprintf("county lookup failed for %q: %v", detail.Address, err))
		} else {
			county = resolved
		}
	}

	company, added, err := e.companies.Resolve(ctx, run.cache, rec.BuyerName, county)
	if err != nil {
		return err
	}
	if added {
		run.summary.TotalCompaniesAdded++
	}

	statusHint := detail.ListingStatus
	if statusHint == "" {
		statusHint = rec.ListingStatusHint
	}
	status, listing := ResolveStatus(statusHint)

	msa := detail.MSA
	if msa == "" {
		msa = run.market.MSA
	}

	result, err := e.properties.Upsert(ctx, services.UpsertInput{
		Detail:        detail,
		CompanyID:     company.ID,
		CompanyName:   company.Name,
		Status:        status,
		ListingStatus: listing,
		Market:        run.market.ID,
		County:        county,
		MSA:           msa,
	})
	if err != nil {
		return err
	}

	run.summary.TotalProcessed++
	run.sincePersist++
	if result.Inserted {
		run.summary.TotalInserted++
	}
	if result.Updated {
		run.summary.TotalUpdated++
	}
	return nil
}

// noteNonCorporate handles a trust or individual purchase. If the property
// is one we track, the operator sold it; otherwise the record is dropped.
func (e *Engine) noteNonCorporate(ctx context.Context, run *marketRun, rec *models.RawTransactionRecord, detail *models.PropertyDetail) error {
	if detail.ExternalID == "" {
		return nil
	}
	existing, err := e.properties.GetByExternalID(ctx, detail.ExternalID)
	if err != nil || existing == nil {
		return err
	}
	if existing.Status == models.StatusSold {
		return nil
	}
	saleDate := rec.BoundaryDate()
	if existing.PurchaseDate != nil && !saleDate.After(*existing.PurchaseDate) {
		return nil
	}

	run.logf(models.LogLevelInfo, run.market.ID,
		fmt.Sprintf("marking %q sold to %s", existing.Address, rec.BuyerName))
	return e.properties.MarkSold(ctx, existing, rec.BuyerName, saleDate)
}

func avmDiverges(detail *models.PropertyDetail, threshold float64) bool {
	if threshold <= 0 || detail.Valuation == nil || detail.Valuation.Value == nil || detail.LastSalePrice == nil {
		return false
	}
	return math.Abs(*detail.Valuation.Value-*detail.LastSalePrice) > threshold
}

// failMarket records the failure, checkpoints best effort and wraps the
// cause. The run context may already be canceled, so the final save gets a
// short detached context.
func (e *Engine) failMarket(run *marketRun, cause error) error {
	phase := run.state
	run.state = stateFailed
	run.logf(models.LogLevelError, run.market.ID, fmt.Sprintf("market sync failed during %s: %v", phase, cause))

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.checkpoints.Advance(saveCtx, run.cp, run.lastBoundary, run.sincePersist); err != nil {
		run.logf(models.LogLevelWarn, run.market.ID, fmt.Sprintf("failure checkpoint save failed: %v", err))
	} else {
		run.sincePersist = 0
	}

	run.summary.FinalWatermark = run.cp.WatermarkDate
	run.summary.DateRangeCovered.To = run.cp.WatermarkDate
	return fmt.Errorf("sync %s: %w", run.market.ID, cause)
}
