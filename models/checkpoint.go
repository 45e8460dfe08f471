package models

import "time"

// SyncCheckpoint is the per-market resumable watermark. One row per market,
// created lazily on the first advance. WatermarkDate never regresses across
// successful runs.
type SyncCheckpoint struct {
	MarketID           string    `json:"market_id" db:"market_id"`
	WatermarkDate      time.Time `json:"watermark_date" db:"watermark_date"`
	TotalRecordsSynced int64     `json:"total_records_synced" db:"total_records_synced"`
	LastSyncedAt       time.Time `json:"last_synced_at" db:"last_synced_at"`
}
