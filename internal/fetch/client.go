package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"cohortcli/internal/cohort"
	"cohortcli/internal/config"
	apierrors "cohortcli/internal/errors"
	"cohortcli/pkg/contracts/domain"
)

// maxTableBytes caps a single attachment download.
const maxTableBytes = 64 << 20 // 64MB

// Client talks to the uploads service that stores the raw sales tables.
type Client struct {
	baseURL     string
	apiToken    string
	httpClient  *http.Client
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewClient creates an uploads client from configuration.
func NewClient(cfg config.UploadsConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:    cfg.APIToken,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "uploads_client")),
	}
}

// ListRecords fetches the upload records, optionally filtered by brand.
func (c *Client) ListRecords(ctx context.Context, brand string) ([]domain.UploadRecord, error) {
	endpoint := c.baseURL + "/uploads"
	if brand != "" {
		endpoint += "?brand=" + url.QueryEscape(brand)
	}

	var listing struct {
		Records []domain.UploadRecord `json:"records"`
	}
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "listed upload records",
		slog.String("brand", brand),
		slog.Int("count", len(listing.Records)))

	return listing.Records, nil
}

// GetRecord fetches a single upload record by ID.
func (c *Client) GetRecord(ctx context.Context, recordID string) (*domain.UploadRecord, error) {
	endpoint := c.baseURL + "/uploads/" + url.PathEscape(recordID)

	var record domain.UploadRecord
	if err := c.getJSON(ctx, endpoint, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// FetchTables downloads every attachment across the given records. The
// downloads run concurrently, bounded by the configured concurrency and
// rate limit, and the result keeps the attachment order stable.
func (c *Client) FetchTables(ctx context.Context, records []domain.UploadRecord) ([]cohort.RawTable, error) {
	type slot struct {
		index      int
		attachment domain.Attachment
	}

	var slots []slot
	for _, record := range records {
		for _, att := range record.Attachments {
			slots = append(slots, slot{index: len(slots), attachment: att})
		}
	}

	tables := make([]cohort.RawTable, len(slots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, s := range slots {
		s := s
		g.Go(func() error {
			data, err := c.download(ctx, s.attachment.URL)
			if err != nil {
				return fmt.Errorf("download %s: %w", s.attachment.Filename, err)
			}

			tables[s.index] = cohort.RawTable{
				Name:   s.attachment.Filename,
				Format: formatForFilename(s.attachment.Filename),
				Data:   data,
			}

			c.logger.DebugContext(ctx, "fetched table",
				slog.String("filename", s.attachment.Filename),
				slog.Int("bytes", len(data)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}

	if status == http.StatusNotFound {
		return apierrors.ErrRecordNotFound
	}
	if status != http.StatusOK {
		return apierrors.NewUpstreamError("uploads",
			fmt.Errorf("GET %s: unexpected status %d", endpoint, status))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apierrors.NewUpstreamError("uploads",
			fmt.Errorf("decode response from %s: %w", endpoint, err))
	}
	return nil
}

// download performs a rate-limited GET and returns the raw body.
func (c *Client) download(ctx context.Context, endpoint string) ([]byte, error) {
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierrors.NewUpstreamError("uploads",
			fmt.Errorf("GET %s: unexpected status %d", endpoint, status))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/csv, */*")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, apierrors.NewUpstreamError("uploads", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTableBytes))
	if err != nil {
		return nil, resp.StatusCode, apierrors.NewUpstreamError("uploads",
			fmt.Errorf("read response body: %w", err))
	}

	c.logger.DebugContext(ctx, "upstream request",
		slog.String("url", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	return body, resp.StatusCode, nil
}

// formatForFilename infers the table format from the attachment extension.
// Anything that is not an Excel workbook is treated as CSV, matching how
// shops usually export their sales data.
func formatForFilename(filename string) cohort.TableFormat {
	switch strings.ToLower(path.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return cohort.FormatXLSX
	default:
		return cohort.FormatCSV
	}
}
