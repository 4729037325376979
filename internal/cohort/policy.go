package cohort

// Policy selects how customers are bucketed into cohorts. The engine runs
// every supported policy for each dataset; the two are pure relabelings of
// the same resolved rows.
type Policy string

const (
	// PolicyFirstPurchaseMonth buckets customers by the calendar month of
	// their first purchase.
	PolicyFirstPurchaseMonth Policy = "Month"
	// PolicyFirstProduct buckets customers by the first product they bought.
	PolicyFirstProduct Policy = "First Product Purchased"
)

// cohortMonthLayout renders a first-purchase day truncated to year-month.
const cohortMonthLayout = "2006-01"

// unknownProductCohort labels customers whose resolved first purchase has no
// product title under the first-product policy.
const unknownProductCohort = "unknown"

// Policies returns the supported policies in the order reports are produced.
func Policies() []Policy {
	return []Policy{PolicyFirstPurchaseMonth, PolicyFirstProduct}
}

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyFirstPurchaseMonth, PolicyFirstProduct:
		return true
	}
	return false
}

func (p Policy) String() string { return string(p) }

// LabeledRow is a resolved transaction carrying its cohort key for one
// policy run.
type LabeledRow struct {
	Transaction
	Cohort string
}

// AssignCohorts labels every row with its cohort key under the given policy.
// Rows with a missing customer email carry no first-purchase anchor and are
// excluded before assignment. Sales totals and first-purchase marks are not
// altered.
func AssignCohorts(rows []Transaction, policy Policy) ([]LabeledRow, error) {
	if !policy.Valid() {
		return nil, &InvalidPolicyError{Policy: string(policy)}
	}

	labeled := make([]LabeledRow, 0, len(rows))
	for _, row := range rows {
		if row.CustomerEmail == "" {
			continue
		}
		var key string
		switch policy {
		case PolicyFirstPurchaseMonth:
			key = row.FirstPurchaseDay.Format(cohortMonthLayout)
		case PolicyFirstProduct:
			key = row.FirstProduct
			if !row.HasFirstProduct {
				key = unknownProductCohort
			}
		}
		labeled = append(labeled, LabeledRow{Transaction: row, Cohort: key})
	}
	return labeled, nil
}
