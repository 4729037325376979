// Package exporter renders cohort report matrices to CSV.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Renders the matrices produced by the cohort engine into
// report files named after the report, the cohort policy and the run
// timestamp, both in-memory for webhook delivery and on disk.
//
// Example usage:
//
//	reportExporter := exporter.NewReportExporter("reports", logger)
//	files, err := reportExporter.Render(result, time.Now())
//	err = reportExporter.WriteFiles(files)
package exporter
