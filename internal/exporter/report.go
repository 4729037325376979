package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"cohortcli/internal/cohort"
	"cohortcli/pkg/contracts/domain"
)

const reportContentType = "text/csv"

// timestampLayout names report files after the run they came from.
const timestampLayout = "20060102_150405"

// ReportExporter renders cohort matrices into CSV report files.
type ReportExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewReportExporter creates a report exporter writing under baseDir.
func NewReportExporter(baseDir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		writer: NewCSVWriter(baseDir),
		logger: logger.With(slog.String("component", "report_exporter")),
	}
}

// Filename builds the report file name from the report, the policy and
// the run timestamp.
func Filename(report string, policy cohort.Policy, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", report, policy, ts.Format(timestampLayout))
}

// Render converts every matrix in the run result into an in-memory
// report file. All files of one run share the same timestamp.
func (e *ReportExporter) Render(result *cohort.RunResult, ts time.Time) ([]domain.ReportFile, error) {
	var files []domain.ReportFile

	for _, policyReports := range result.Policies {
		for _, matrix := range policyReports.Matrices() {
			content, err := RenderCSV(matrix.Header(), matrix.Rows())
			if err != nil {
				return nil, fmt.Errorf("render %s matrix: %w", matrix.Name, err)
			}

			file := domain.ReportFile{
				Filename:    Filename(matrix.Name, policyReports.Policy, ts),
				ReportType:  domain.ReportType(matrix.Name),
				CohortType:  domain.CohortType(policyReports.Policy),
				ContentType: reportContentType,
				Content:     content,
				Size:        int64(len(content)),
				CreatedAt:   ts,
			}
			files = append(files, file)

			e.logger.Debug("rendered report",
				slog.String("filename", file.Filename),
				slog.Int("cohorts", len(matrix.Cohorts)),
				slog.Int64("bytes", file.Size))
		}
	}

	return files, nil
}

// WriteFiles persists rendered report files under the exporter's base
// directory. Content already carries the BOM and header row.
func (e *ReportExporter) WriteFiles(files []domain.ReportFile) error {
	for _, file := range files {
		if err := e.writer.WriteRaw(file.Filename, file.Content); err != nil {
			return fmt.Errorf("write report %s: %w", file.Filename, err)
		}
	}
	return nil
}
