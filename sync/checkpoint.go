package sync

import (
	"context"
	"fmt"
	"time"

	"parcelsync/models"
)

// CheckpointStore persists per-market watermarks. GetCheckpoint returns
// (nil, nil) for a market that has never synced.
type CheckpointStore interface {
	GetCheckpoint(ctx context.Context, marketID string) (*models.SyncCheckpoint, error)
	SaveCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error
}

// CheckpointManager loads and advances per-market watermarks. The watermark
// only ever moves forward; replaying old pages cannot drag it back.
type CheckpointManager struct {
	store        CheckpointStore
	defaultStart time.Time
}

func NewCheckpointManager(store CheckpointStore, defaultStart time.Time) *CheckpointManager {
	return &CheckpointManager{store: store, defaultStart: defaultStart}
}

// Load returns the market's checkpoint, or a fresh one when the market has
// never synced. A fresh checkpoint starts at the market override when given,
// otherwise at the configured default, and is not persisted until its first
// Advance.
func (m *CheckpointManager) Load(ctx context.Context, marketID string, override time.Time) (*models.SyncCheckpoint, error) {
	cp, err := m.store.GetCheckpoint(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint for %s: %w", marketID, err)
	}
	if cp == nil {
		start := m.defaultStart
		if !override.IsZero() {
			start = override
		}
		cp = &models.SyncCheckpoint{
			MarketID:      marketID,
			WatermarkDate: start,
		}
	}
	return cp, nil
}

// Advance moves the watermark to the day before the given boundary and adds
// delta to the synced total, then persists. The watermark trails the newest
// seen record by one day so boundary-day records are refetched next run. A
// zero boundary, or one that would move the watermark backwards, leaves the
// date alone; the total and touch time still persist.
func (m *CheckpointManager) Advance(ctx context.Context, cp *models.SyncCheckpoint, boundary time.Time, delta int) error {
	if !boundary.IsZero() {
		wm := boundary.AddDate(0, 0, -1)
		if wm.After(cp.WatermarkDate) {
			cp.WatermarkDate = wm
		}
	}
	cp.TotalRecordsSynced += int64(delta)
	cp.LastSyncedAt = time.Now()

	if err := m.store.SaveCheckpoint(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint for %s: %w", cp.MarketID, err)
	}
	return nil
}
