/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Dates go out as RFC 3339
  so end-of-day instants survive the round trip; they come in as YYYY-MM-DD
  or RFC 3339.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Frequencies:
    FrequencyDTO

  Periods:
    DateDTO, LabelDTO, PeriodDTO, PeriodListResponse, FormatDTO

  Ranges:
    RangeDTO, SessionRangeDTO, SetRangeRequest

  Preferences:
    PreferenceDTO, SavePreferenceRequest

  Reports:
    BlockReportRequest, EntryRequest, BlockReportResponse, PeriodTotalDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// FREQUENCIES
// =============================================================================

// FrequencyDTO describes one frequency and the codes that resolve to it.
type FrequencyDTO struct {
	Code       string   `json:"code"`
	Synonyms   []string `json:"synonyms"`
	Unit       string   `json:"unit"`
	Multiplier int      `json:"multiplier"`
	Rolling    bool     `json:"rolling"`
}

// =============================================================================
// PERIODS
// =============================================================================

// DateDTO is the result of a single boundary or arithmetic operation.
type DateDTO struct {
	Code string `json:"code"`
	Date string `json:"date"`
}

// LabelDTO is a display label for a period.
type LabelDTO struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// PeriodDTO is one enumerated period.
type PeriodDTO struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Frequency string `json:"frequency"`
	Label     string `json:"label"`
}

// PeriodKeyDTO is one display bucket.
type PeriodKeyDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// PeriodListResponse lists display buckets at the chosen granularity.
type PeriodListResponse struct {
	Granularity string         `json:"granularity"`
	Periods     []PeriodKeyDTO `json:"periods"`
}

// FormatDTO carries every granularity selector for a span.
type FormatDTO struct {
	Granularity string `json:"granularity"`
	SortFormat  string `json:"sort_format"`
	LabelKey    string `json:"label_key"`
	SQLFormat   string `json:"sql_format"`
	EndOfPeriod string `json:"end_of_period"`
	RangeFormat string `json:"range_format"`
}

// =============================================================================
// RANGES
// =============================================================================

// RangeDTO is the report range for the user's view range.
type RangeDTO struct {
	ViewRange string `json:"view_range"`
	Code      string `json:"code"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Label     string `json:"label"`
}

// SessionRangeDTO is the custom range; Selected is false when it is the
// current-month fallback.
type SessionRangeDTO struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Days     int    `json:"days"`
	Selected bool   `json:"selected"`
}

// SetRangeRequest selects a custom range.
type SetRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// =============================================================================
// PREFERENCES
// =============================================================================

// PreferenceDTO is a user's stored navigation settings.
type PreferenceDTO struct {
	UserID          string `json:"user_id"`
	ViewRange       string `json:"view_range"`
	FiscalYearStart string `json:"fiscal_year_start"`
	Locale          string `json:"locale"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// SavePreferenceRequest replaces the user's settings. Empty fields reset to
// the server defaults.
type SavePreferenceRequest struct {
	ViewRange       string `json:"view_range"`
	FiscalYearStart string `json:"fiscal_year_start"`
	Locale          string `json:"locale"`
}

// =============================================================================
// REPORTS
// =============================================================================

// BlockReportRequest asks for period-over-period totals.
type BlockReportRequest struct {
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Code    string         `json:"code"`
	Entries []EntryRequest `json:"entries"`
}

// EntryRequest is a dated amount. Amount is a decimal string.
type EntryRequest struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// PeriodTotalDTO is one row of a block report.
type PeriodTotalDTO struct {
	PeriodDTO
	Count  int    `json:"count"`
	Total  string `json:"total"`
	Change string `json:"change"`
}

// BlockReportResponse holds the rows, newest first, and the overall total.
type BlockReportResponse struct {
	Periods []PeriodTotalDTO `json:"periods"`
	Total   string           `json:"total"`
	Skipped int              `json:"skipped"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
