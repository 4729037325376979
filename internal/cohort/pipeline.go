package cohort

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine runs the full cohort analytics pipeline over one set of raw tables.
// A run is a single synchronous unit of work owning all intermediate data;
// concurrent runs share nothing.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine with the given logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "cohort_engine"))}
}

// RunResult carries everything the emit boundary needs: the three matrices
// for each policy plus the day range observed across the merged dataset.
type RunResult struct {
	Policies []PolicyReports
	StartDay time.Time
	EndDay   time.Time
	RowCount int
}

// Run executes normalize -> merge -> filter -> resolve, then assign ->
// aggregate for every supported policy. Either all matrices for all policies
// are produced or the run fails with a single terminal error; there is no
// partial-success mode and no internal retry.
func (e *Engine) Run(ctx context.Context, tables []RawTable) (*RunResult, error) {
	normalized := make([][]Transaction, 0, len(tables))
	for _, table := range tables {
		rows, err := Normalize(table)
		if err != nil {
			return nil, fmt.Errorf("normalize table %s: %w", table.Name, err)
		}
		e.logger.DebugContext(ctx, "table normalized",
			slog.String("table", table.Name),
			slog.Int("rows", len(rows)))
		normalized = append(normalized, rows)
	}

	merged := filterRows(Merge(normalized...))
	if len(merged) == 0 {
		return nil, ErrNoValidRows
	}

	resolved := ResolveFirstPurchases(merged)

	result := &RunResult{RowCount: len(resolved)}
	for i, row := range resolved {
		if i == 0 || row.Day.Before(result.StartDay) {
			result.StartDay = row.Day
		}
		if i == 0 || row.Day.After(result.EndDay) {
			result.EndDay = row.Day
		}
	}

	for _, policy := range Policies() {
		labeled, err := AssignCohorts(resolved, policy)
		if err != nil {
			return nil, err
		}
		reports := Aggregate(policy, labeled)
		e.logger.InfoContext(ctx, "policy aggregated",
			slog.String("policy", policy.String()),
			slog.Int("cohorts", len(reports.Revenue.Cohorts)),
			slog.Int("month_offsets", len(reports.Revenue.Offsets)))
		result.Policies = append(result.Policies, reports)
	}

	e.logger.InfoContext(ctx, "cohort run complete",
		slog.Int("tables", len(tables)),
		slog.Int("rows", result.RowCount),
		slog.String("start_day", result.StartDay.Format("2006-01-02")),
		slog.String("end_day", result.EndDay.Format("2006-01-02")))

	return result, nil
}
