package models

import "time"

// Fetch outcomes recorded in the audit log.
const (
	OutcomeOK           = "ok"
	OutcomeNoData       = "no_data"
	OutcomeRemoteError  = "remote_error"
	OutcomeNetworkError = "network_error"
	OutcomeFailure      = "failure"
)

// FetchLogEntry describes one upstream fetch for a district.
type FetchLogEntry struct {
	ID          int64     `json:"id"`
	District    string    `json:"district"`
	Outcome     string    `json:"outcome"`
	StatusCode  int       `json:"statusCode,omitempty"`
	RecordCount int       `json:"recordCount"`
	DurationMs  int64     `json:"durationMs"`
	CreatedAt   time.Time `json:"createdAt"`
}
