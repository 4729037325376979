package cohort

import "time"

// TableFormat identifies the container format of a raw upload.
type TableFormat string

const (
	FormatCSV  TableFormat = "csv"
	FormatXLSX TableFormat = "xlsx"
)

// RawTable is one uploaded sales table as handed over by the fetch boundary:
// raw bytes of unknown text encoding plus a source name used in error
// reporting.
type RawTable struct {
	Name   string
	Format TableFormat
	Data   []byte
}

// Transaction is one sales row in the canonical schema. HasProduct and
// HasSales distinguish genuinely missing values from zero values; a
// total_sales cell that fails numeric coercion becomes missing rather than an
// error.
type Transaction struct {
	CustomerEmail string
	OrderID       string
	Day           time.Time
	DayValid      bool
	ProductTitle  string
	HasProduct    bool
	TotalSales    float64
	HasSales      bool

	// First-purchase anchor, attached by ResolveFirstPurchases to every row
	// of the customer. Immutable once computed for a run.
	FirstOrderID     string
	FirstPurchaseDay time.Time
	FirstProduct     string
	HasFirstProduct  bool
	IsFirstPurchase  bool
}

// Merge concatenates normalized tables into one working dataset. All rows are
// preserved; no deduplication or cross-table validation happens here. Empty
// inputs are fine.
func Merge(tables ...[]Transaction) []Transaction {
	total := 0
	for _, t := range tables {
		total += len(t)
	}
	merged := make([]Transaction, 0, total)
	for _, t := range tables {
		merged = append(merged, t...)
	}
	return merged
}

// filterRows applies the row-validity invariants: rows whose day failed to
// parse are dropped (cohort math is undefined without a date), and rows with
// total_sales == 0 and a missing product_title are upload artifacts, not
// transactions.
func filterRows(rows []Transaction) []Transaction {
	kept := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		if !row.DayValid {
			continue
		}
		if row.HasSales && row.TotalSales == 0 && !row.HasProduct {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}
