package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cohortcli/internal/cohort"
	"cohortcli/internal/infrastructure"
	"cohortcli/pkg/contracts/domain"
)

// UploadsClient fetches upload records and their raw sales tables.
type UploadsClient interface {
	ListRecords(ctx context.Context, brand string) ([]domain.UploadRecord, error)
	FetchTables(ctx context.Context, records []domain.UploadRecord) ([]cohort.RawTable, error)
}

// Engine runs the cohort pipeline over a set of raw tables.
type Engine interface {
	Run(ctx context.Context, tables []cohort.RawTable) (*cohort.RunResult, error)
}

// Exporter renders and persists report files.
type Exporter interface {
	Render(result *cohort.RunResult, ts time.Time) ([]domain.ReportFile, error)
	WriteFiles(files []domain.ReportFile) error
}

// Deliverer posts finished report files to the delivery endpoint.
type Deliverer interface {
	DeliverAll(ctx context.Context, files []domain.ReportFile, meta domain.RunMetadata) error
}

// Deps bundles the collaborators of the report service.
type Deps struct {
	Uploads  UploadsClient
	Engine   Engine
	Exporter Exporter
	Webhook  Deliverer

	// OutputDir is where finished reports are kept, used for listing.
	OutputDir string
	// KeepLocal controls whether rendered files are written to OutputDir.
	KeepLocal bool
	// DeliverEnabled controls webhook delivery.
	DeliverEnabled bool

	Metrics *infrastructure.Metrics
	Logger  *slog.Logger

	// Now is injectable for deterministic filenames in tests.
	Now func() time.Time
}

// ReportService orchestrates a full report generation run.
type ReportService struct {
	deps   Deps
	logger *slog.Logger
}

// NewReportService creates a report service
func NewReportService(deps Deps) *ReportService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &ReportService{
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "report_service")),
	}
}

// Generate runs the whole pipeline: fetch the uploaded tables, run the
// cohort engine, render the six report matrices and deliver them. The
// record ID labels the run and travels with every webhook delivery.
func (s *ReportService) Generate(ctx context.Context, recordID, brand string) (*domain.RunSummary, error) {
	start := time.Now()

	summary, err := s.generate(ctx, recordID, brand)

	if s.deps.Metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.deps.Metrics.ReportRuns.WithLabelValues(status).Inc()
		s.deps.Metrics.ReportRunDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "report run failed",
			slog.String("record_id", recordID),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	s.logger.InfoContext(ctx, "report run completed",
		slog.String("record_id", recordID),
		slog.Int("reports", len(summary.Reports)),
		slog.Int("rows", summary.RowCount),
		slog.Duration("duration", time.Since(start)))

	return summary, nil
}

func (s *ReportService) generate(ctx context.Context, recordID, brand string) (*domain.RunSummary, error) {
	records, err := s.deps.Uploads.ListRecords(ctx, brand)
	if err != nil {
		return nil, fmt.Errorf("list upload records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoUploadsFound
	}

	tables, err := s.deps.Uploads.FetchTables(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("fetch tables: %w", err)
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.TablesFetched.Add(float64(len(tables)))
	}

	result, err := s.deps.Engine.Run(ctx, tables)
	if err != nil {
		return nil, err
	}

	ts := s.deps.Now()
	files, err := s.deps.Exporter.Render(result, ts)
	if err != nil {
		return nil, fmt.Errorf("render reports: %w", err)
	}

	if s.deps.KeepLocal {
		if err := s.deps.Exporter.WriteFiles(files); err != nil {
			return nil, fmt.Errorf("write reports: %w", err)
		}
	}

	meta := domain.NewRunMetadata(recordID, result.StartDay, result.EndDay, result.RowCount)

	if s.deps.DeliverEnabled && s.deps.Webhook != nil {
		err := s.deps.Webhook.DeliverAll(ctx, files, meta)
		if s.deps.Metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			s.deps.Metrics.WebhookDeliveries.WithLabelValues(status).Inc()
		}
		if err != nil {
			return nil, fmt.Errorf("deliver reports: %w", err)
		}
	}

	return &domain.RunSummary{
		RecordID:  recordID,
		StartDate: meta.StartDate,
		EndDate:   meta.EndDate,
		RowCount:  result.RowCount,
		Reports:   files,
	}, nil
}

// ListReports returns the report files kept in the output directory,
// newest first.
func (s *ReportService) ListReports(ctx context.Context) ([]domain.ReportFile, error) {
	entries, err := os.ReadDir(s.deps.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReportsFound
		}
		return nil, fmt.Errorf("read reports directory: %w", err)
	}

	var files []domain.ReportFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		file := domain.ReportFile{
			Filename:    entry.Name(),
			ContentType: "text/csv",
			Size:        info.Size(),
			CreatedAt:   info.ModTime(),
		}
		file.ReportType, file.CohortType = parseReportFilename(entry.Name())
		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, ErrNoReportsFound
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})

	s.logger.DebugContext(ctx, "listed reports",
		slog.String("dir", s.deps.OutputDir),
		slog.Int("count", len(files)))

	return files, nil
}

// parseReportFilename recovers the report and cohort type from names of
// the form "{report}_{cohort}_{timestamp}.csv". Report and cohort names
// may contain spaces but never underscores.
func parseReportFilename(name string) (domain.ReportType, domain.CohortType) {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 3 {
		return "", ""
	}
	return domain.ReportType(parts[0]), domain.CohortType(parts[1])
}
