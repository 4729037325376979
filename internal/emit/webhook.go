package emit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"cohortcli/internal/config"
	apierrors "cohortcli/internal/errors"
	"cohortcli/pkg/contracts/domain"
)

// Webhook posts finished report files to the configured delivery endpoint.
// Each file goes out as its own multipart request carrying the run metadata
// form fields alongside the CSV payload.
type Webhook struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhook creates a webhook emitter from configuration.
func NewWebhook(cfg config.WebhookConfig, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(slog.String("component", "webhook")),
	}
}

// Deliver posts a single report file with its run metadata.
func (w *Webhook) Deliver(ctx context.Context, file domain.ReportFile, meta domain.RunMetadata) error {
	body, contentType, err := encodeMultipart(file, meta)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", file.Filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return apierrors.NewUpstreamError("webhook", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierrors.NewUpstreamError("webhook",
			fmt.Errorf("POST %s: unexpected status %d", w.url, resp.StatusCode))
	}

	w.logger.InfoContext(ctx, "delivered report",
		slog.String("filename", file.Filename),
		slog.String("report_type", string(file.ReportType)),
		slog.String("cohort_type", string(file.CohortType)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// DeliverAll posts every file of a run in order, stopping on the first
// failure.
func (w *Webhook) DeliverAll(ctx context.Context, files []domain.ReportFile, meta domain.RunMetadata) error {
	for _, file := range files {
		if err := w.Deliver(ctx, file, meta); err != nil {
			return err
		}
	}
	return nil
}

// encodeMultipart builds the multipart body the delivery endpoint expects:
// a "file" part with the CSV payload and one form field per metadata value.
func encodeMultipart(file domain.ReportFile, meta domain.RunMetadata) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		escapeQuotes(file.Filename)))
	header.Set("Content-Type", file.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"report_type": string(file.ReportType),
		"cohort_type": string(file.CohortType),
		"start_date":  meta.StartDate,
		"end_date":    meta.EndDate,
		"record_id":   meta.RecordID,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
