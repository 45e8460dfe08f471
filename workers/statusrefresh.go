package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"parcelsync/identity"
	"parcelsync/models"
	"parcelsync/provider"
	"parcelsync/sync"
)

// RefreshStore is the property persistence the refresh worker needs. Rows
// already sold never come back from ListRefreshableProperties and the
// status update is a no-op on them, so a refresh can never resurrect or
// create a sale.
type RefreshStore interface {
	ListRefreshableProperties(ctx context.Context, limit, offset int) ([]models.Property, error)
	UpdatePropertyStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus, listing models.ListingStatus) error
	CreatePropertyEvent(ctx context.Context, e *models.PropertyEvent) error
}

// DetailSource provides current listing state for tracked addresses.
type DetailSource interface {
	FetchPropertyDetails(ctx context.Context, addresses []string) ([]models.DetailResult, error)
}

// StatusRefreshWorker periodically re-reads listing state for tracked
// properties and re-applies the status mapping, catching listings that went
// on or off market between syncs.
type StatusRefreshWorker struct {
	store     RefreshStore
	source    DetailSource
	batchSize int
	delay     time.Duration
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewStatusRefreshWorker(store RefreshStore, source DetailSource, batchSize int, delay time.Duration) *StatusRefreshWorker {
	if batchSize <= 0 || batchSize > provider.MaxDetailBatch {
		batchSize = provider.MaxDetailBatch
	}
	return &StatusRefreshWorker{
		store:     store,
		source:    source,
		batchSize: batchSize,
		delay:     delay,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *StatusRefreshWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *StatusRefreshWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// RunOnce does a single refresh pass without starting the loop.
func (w *StatusRefreshWorker) RunOnce(ctx context.Context) {
	w.processAll(ctx)
}

// Run starts the refresh loop
func (w *StatusRefreshWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Status refresh worker stopping")
			return
		case <-ticker.C:
			w.processAll(ctx)
		case <-w.triggerCh:
			log.Println("Status refresh worker triggered manually")
			w.processAll(ctx)
		}
	}
}

func (w *StatusRefreshWorker) processAll(ctx context.Context) {
	var checked, changed int

	for offset := 0; ; offset += w.batchSize {
		properties, err := w.store.ListRefreshableProperties(ctx, w.batchSize, offset)
		if err != nil {
			log.Printf("Status refresh: query error: %v", err)
			return
		}
		if len(properties) == 0 {
			break
		}

		c, ch := w.refreshBatch(ctx, properties)
		checked += c
		changed += ch

		if len(properties) < w.batchSize {
			break
		}
		time.Sleep(w.delay)
	}

	if checked > 0 {
		log.Printf("Status refresh: checked %d properties, %d status changes", checked, changed)
		w.logFunc(models.LogLevelInfo, "statusrefresh",
			fmt.Sprintf("Checked %d properties, %d status changes", checked, changed))
	}
}

func (w *StatusRefreshWorker) refreshBatch(ctx context.Context, properties []models.Property) (checked, changed int) {
	addresses := make([]string, len(properties))
	byAddress := make(map[string]*models.Property, len(properties))
	for i := range properties {
		p := &properties[i]
		addresses[i] = fmt.Sprintf("%s, %s, %s", p.Address, p.City, p.State)
		byAddress[identity.AddressKey(p.Address, p.City, p.State)] = p
	}

	results, err := w.source.FetchPropertyDetails(ctx, addresses)
	if errors.Is(err, provider.ErrMalformedBatch) {
		log.Printf("Status refresh: skipping malformed batch of %d: %v", len(properties), err)
		return 0, 0
	}
	if err != nil {
		log.Printf("Status refresh: detail fetch failed: %v", err)
		return 0, 0
	}

	for i := range results {
		res := &results[i]
		if res.Error != "" || res.Property == nil {
			continue
		}
		p, ok := byAddress[identity.Normalize(res.Address)]
		if !ok {
			continue
		}
		checked++

		status, listing := sync.ResolveStatus(res.Property.ListingStatus)
		if status == p.Status && listing == p.ListingStatus {
			continue
		}

		if err := w.store.UpdatePropertyStatus(ctx, p.ID, status, listing); err != nil {
			log.Printf("Status refresh: failed to update %s: %v", p.ExternalID, err)
			continue
		}
		changed++

		event := &models.PropertyEvent{
			PropertyID: p.ID,
			EventType:  models.EventTypeStatusChange,
			EventDate:  time.Now(),
			Summary:    fmt.Sprintf("status %s -> %s", p.Status, status),
			Source:     "statusrefresh",
			CreatedAt:  time.Now(),
		}
		if err := w.store.CreatePropertyEvent(ctx, event); err != nil {
			log.Printf("Status refresh: failed to create status_change event: %v", err)
		}
	}
	return checked, changed
}
