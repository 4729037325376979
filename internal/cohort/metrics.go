package cohort

import "sort"

// PolicyReports bundles the three output matrices produced for one cohort
// policy run.
type PolicyReports struct {
	Policy     Policy
	LTV        *Matrix
	Revenue    *Matrix
	RepeatRate *Matrix
}

// Matrices returns the reports in their fixed emission order.
func (p PolicyReports) Matrices() []*Matrix {
	return []*Matrix{p.LTV, p.Revenue, p.RepeatRate}
}

// monthsSinceFirstPurchase is the integer calendar-month distance between a
// transaction and the customer's first purchase. Computed from calendar
// fields directly so cohorts align on a month grid rather than a 30-day
// approximation.
func monthsSinceFirstPurchase(row Transaction) int {
	return (row.Day.Year()-row.FirstPurchaseDay.Year())*12 +
		int(row.Day.Month()) - int(row.FirstPurchaseDay.Month())
}

// Aggregate computes the three report matrices from cohort-labeled rows.
// Output is fully determined by the input rows: no randomness, no external
// state.
func Aggregate(policy Policy, rows []LabeledRow) PolicyReports {
	type cell struct {
		cohort string
		offset int
	}

	revenue := make(map[cell]float64)
	repeatCustomers := make(map[cell]map[string]struct{})
	cohortCustomers := make(map[string]map[string]struct{})
	offsetSet := make(map[int]struct{})

	for _, row := range rows {
		offset := monthsSinceFirstPurchase(row.Transaction)
		c := cell{cohort: row.Cohort, offset: offset}
		offsetSet[offset] = struct{}{}

		if row.HasSales {
			revenue[c] += row.TotalSales
		}

		if cohortCustomers[row.Cohort] == nil {
			cohortCustomers[row.Cohort] = make(map[string]struct{})
		}
		cohortCustomers[row.Cohort][row.CustomerEmail] = struct{}{}

		if !row.IsFirstPurchase {
			if repeatCustomers[c] == nil {
				repeatCustomers[c] = make(map[string]struct{})
			}
			repeatCustomers[c][row.CustomerEmail] = struct{}{}
		}
	}

	cohorts := make([]string, 0, len(cohortCustomers))
	sizes := make(map[string]int, len(cohortCustomers))
	for cohort, customers := range cohortCustomers {
		cohorts = append(cohorts, cohort)
		sizes[cohort] = len(customers)
	}
	sort.Strings(cohorts)

	offsets := make([]int, 0, len(offsetSet))
	for offset := range offsetSet {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	revenueMatrix := newMatrix(ReportRevenue, cohorts, offsets, sizes, 2)
	ltvMatrix := newMatrix(ReportLTV, cohorts, offsets, sizes, 2)
	rateMatrix := newMatrix(ReportRepeatRate, cohorts, offsets, sizes, 4)

	for _, cohort := range cohorts {
		size := float64(sizes[cohort])

		// Cumulative spend runs over the dense offset grid so that average
		// cumulative spend is non-decreasing within a cohort even across
		// months with no observed purchases.
		cumulative := 0.0
		for _, offset := range offsets {
			c := cell{cohort: cohort, offset: offset}
			sum := revenue[c]
			cumulative += sum
			revenueMatrix.Cells[cohort][offset] = sum
			if size > 0 {
				ltvMatrix.Cells[cohort][offset] = cumulative / size
			}
			if purchasers := repeatCustomers[c]; len(purchasers) > 0 && size > 0 {
				rateMatrix.Cells[cohort][offset] = float64(len(purchasers)) / size
			}
		}
	}

	return PolicyReports{
		Policy:     policy,
		LTV:        ltvMatrix,
		Revenue:    revenueMatrix,
		RepeatRate: rateMatrix,
	}
}
