package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cohortcli/internal/cohort"
	"cohortcli/internal/config"
	"cohortcli/internal/emit"
	"cohortcli/internal/exporter"
	"cohortcli/internal/fetch"
	"cohortcli/internal/infrastructure"
	"cohortcli/internal/services"
)

func main() {
	recordID := flag.String("record-id", "", "upload record ID to label the run with (required)")
	brand := flag.String("brand", "", "restrict uploads to a single brand")
	outputDir := flag.String("out", "", "output directory for report files (defaults to config value)")
	noWebhook := flag.Bool("no-webhook", false, "skip webhook delivery even when configured")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	if *recordID == "" {
		fmt.Fprintln(os.Stderr, "reportgen: -record-id is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Reports.OutputDir = *outputDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	uploads := fetch.NewClient(cfg.Uploads, logger)
	engine := cohort.NewEngine(logger)
	reportExporter := exporter.NewReportExporter(cfg.Reports.OutputDir, logger)
	webhook := emit.NewWebhook(cfg.Webhook, logger)

	service := services.NewReportService(services.Deps{
		Uploads:        uploads,
		Engine:         engine,
		Exporter:       reportExporter,
		Webhook:        webhook,
		OutputDir:      cfg.Reports.OutputDir,
		KeepLocal:      cfg.Reports.KeepLocal,
		DeliverEnabled: !*noWebhook && cfg.Webhook.Enabled && cfg.Webhook.URL != "",
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	ctx = infrastructure.EnsureTraceID(ctx)

	summary, err := service.Generate(ctx, *recordID, *brand)
	if err != nil {
		logger.Error("Report generation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d reports covering %s to %s (%d rows)\n",
		len(summary.Reports), summary.StartDate, summary.EndDate, summary.RowCount)
	for _, report := range summary.Reports {
		fmt.Printf("  %s (%d bytes)\n", report.Filename, report.Size)
	}
}
