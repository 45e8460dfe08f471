package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// SyncRun is the operational record of one orchestrator run across markets.
type SyncRun struct {
	ID             int64      `json:"id" db:"id"`
	Trigger        string     `json:"trigger" db:"trigger"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at" db:"finished_at"`
	Status         RunStatus  `json:"status" db:"status"`
	MarketsTotal   int        `json:"markets_total" db:"markets_total"`
	MarketsFailed  int        `json:"markets_failed" db:"markets_failed"`
	TotalProcessed int        `json:"total_processed" db:"total_processed"`
	TotalInserted  int        `json:"total_inserted" db:"total_inserted"`
	TotalUpdated   int        `json:"total_updated" db:"total_updated"`
	CompaniesAdded int        `json:"companies_added" db:"companies_added"`
	ErrorMessage   string     `json:"error_message" db:"error_message"`
}
