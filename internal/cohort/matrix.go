package cohort

import (
	"sort"
	"strconv"
)

// Report names of the three output matrices.
const (
	ReportLTV        = "LTV"
	ReportRevenue    = "Revenue"
	ReportRepeatRate = "Repeat Purchase Rate"
)

// Matrix is one cohort x months-since-first-purchase report table. Cohorts
// are the row keys, Offsets the month-offset columns; Sizes holds each
// cohort's distinct-customer count, prepended as the leftmost data column
// when serialized. Cells missing from the map render as 0.
type Matrix struct {
	Name    string
	Cohorts []string
	Offsets []int
	Sizes   map[string]int
	Cells   map[string]map[int]float64

	// decimals controls cell formatting: 2 for monetary matrices, 4 for
	// rates.
	decimals int
}

// Header returns the column header row for the serialized table.
func (m *Matrix) Header() []string {
	header := make([]string, 0, len(m.Offsets)+2)
	header = append(header, "cohort", "cohort_size")
	for _, offset := range m.Offsets {
		header = append(header, strconv.Itoa(offset))
	}
	return header
}

// Rows returns the serialized data rows in cohort order, missing cells
// filled with zero.
func (m *Matrix) Rows() [][]string {
	rows := make([][]string, 0, len(m.Cohorts))
	for _, cohort := range m.Cohorts {
		row := make([]string, 0, len(m.Offsets)+2)
		row = append(row, cohort, strconv.Itoa(m.Sizes[cohort]))
		for _, offset := range m.Offsets {
			row = append(row, strconv.FormatFloat(m.Cells[cohort][offset], 'f', m.decimals, 64))
		}
		rows = append(rows, row)
	}
	return rows
}

// Cell returns the value at (cohort, offset), zero when absent.
func (m *Matrix) Cell(cohort string, offset int) float64 {
	return m.Cells[cohort][offset]
}

func newMatrix(name string, cohorts []string, offsets []int, sizes map[string]int, decimals int) *Matrix {
	m := &Matrix{
		Name:     name,
		Cohorts:  append([]string(nil), cohorts...),
		Offsets:  append([]int(nil), offsets...),
		Sizes:    sizes,
		Cells:    make(map[string]map[int]float64, len(cohorts)),
		decimals: decimals,
	}
	sort.Strings(m.Cohorts)
	sort.Ints(m.Offsets)
	for _, cohort := range m.Cohorts {
		m.Cells[cohort] = make(map[int]float64, len(m.Offsets))
	}
	return m
}
