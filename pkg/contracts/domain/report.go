package domain

import "time"

// ReportType identifies one of the generated cohort reports.
type ReportType string

const (
	ReportTypeLTV        ReportType = "LTV"
	ReportTypeRevenue    ReportType = "Revenue"
	ReportTypeRepeatRate ReportType = "Repeat Purchase Rate"
)

// CohortType identifies the cohort assignment policy a report was built with.
type CohortType string

const (
	CohortTypeMonth        CohortType = "Month"
	CohortTypeFirstProduct CohortType = "First Product Purchased"
)

// DateLayout is the wire format for report date fields.
const DateLayout = "2006-01-02"

// ReportFile is a rendered report ready for export or delivery.
type ReportFile struct {
	Filename    string     `json:"filename"`
	ReportType  ReportType `json:"report_type"`
	CohortType  CohortType `json:"cohort_type"`
	ContentType string     `json:"content_type"`
	Content     []byte     `json:"-"`
	Size        int64      `json:"size"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RunMetadata describes the run a report batch came from. The string
// fields mirror the webhook form fields verbatim.
type RunMetadata struct {
	RecordID  string `json:"record_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	RowCount  int    `json:"row_count"`
}

// NewRunMetadata formats the observed transaction date range for delivery.
func NewRunMetadata(recordID string, start, end time.Time, rowCount int) RunMetadata {
	return RunMetadata{
		RecordID:  recordID,
		StartDate: start.Format(DateLayout),
		EndDate:   end.Format(DateLayout),
		RowCount:  rowCount,
	}
}

// RunSummary is returned by the generate endpoint once a run completes.
type RunSummary struct {
	RecordID  string       `json:"record_id"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	RowCount  int          `json:"row_count"`
	Reports   []ReportFile `json:"reports"`
}
