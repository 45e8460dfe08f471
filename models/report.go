package models

import "time"

// SyncReport is returned to the caller after every sync run, whether or not
// individual markets failed.
type SyncReport struct {
	PerMarket  []MarketSummary `json:"per_market"`
	Errors     []MarketError   `json:"errors"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

type MarketSummary struct {
	Market              string    `json:"market"`
	TotalProcessed      int       `json:"total_processed"`
	TotalInserted       int       `json:"total_inserted"`
	TotalUpdated        int       `json:"total_updated"`
	TotalCompaniesAdded int       `json:"total_companies_added"`
	DateRangeCovered    DateRange `json:"date_range_covered"`
	FinalWatermark      time.Time `json:"final_watermark"`
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type MarketError struct {
	Market  string `json:"market"`
	Message string `json:"message"`
}

// HasErrors reports whether any market failed during the run.
func (r *SyncReport) HasErrors() bool {
	return len(r.Errors) > 0
}
