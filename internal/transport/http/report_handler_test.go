package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortcli/internal/cohort"
	apierrors "cohortcli/internal/errors"
	"cohortcli/internal/middleware"
	"cohortcli/internal/services"
	"cohortcli/pkg/contracts/domain"
)

type fakeReportService struct {
	summary  *domain.RunSummary
	files    []domain.ReportFile
	genErr   error
	listErr  error
	recordID string
	brand    string
}

func (f *fakeReportService) Generate(ctx context.Context, recordID, brand string) (*domain.RunSummary, error) {
	f.recordID = recordID
	f.brand = brand
	return f.summary, f.genErr
}

func (f *fakeReportService) ListReports(ctx context.Context) ([]domain.ReportFile, error) {
	return f.files, f.listErr
}

func newTestRouter(svc *fakeReportService) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := middleware.NewRequestValidator(logger, errorHandler)
	handler := NewReportHandler(svc, errorHandler, validation, logger)

	r := chi.NewRouter()
	r.Mount("/api/reports", handler.Routes())
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpoint(t *testing.T) {
	svc := &fakeReportService{summary: &domain.RunSummary{
		RecordID:  "rec-42",
		StartDate: "2024-01-10",
		EndDate:   "2024-02-15",
		RowCount:  3,
	}}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/reports/generate", map[string]string{
		"record_id": "rec-42",
		"brand":     "acme",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rec-42", svc.recordID)
	assert.Equal(t, "acme", svc.brand)

	var got domain.RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2024-01-10", got.StartDate)
	assert.Equal(t, 3, got.RowCount)
}

func TestGenerateEndpointMissingRecordID(t *testing.T) {
	router := newTestRouter(&fakeReportService{})

	w := postJSON(t, router, "/api/reports/generate", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeValidation, problem["type"])
}

func TestGenerateEndpointRejectsBadBrandSlug(t *testing.T) {
	svc := &fakeReportService{}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/reports/generate", map[string]string{
		"record_id": "rec-1",
		"brand":     "NOT A VALID SLUG !!",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.brand, "service must not see the invalid brand")

	var problem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeValidation, problem["type"])
}

func TestGenerateEndpointSchemaError(t *testing.T) {
	svc := &fakeReportService{
		genErr: fmt.Errorf("normalize table shop_a.csv: %w",
			&cohort.SchemaError{Table: "shop_a.csv", Column: "day"}),
	}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/reports/generate", map[string]string{"record_id": "rec-1"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeReportSchema, problem["type"])
	assert.Equal(t, "shop_a.csv", problem["table"])
}

func TestGenerateEndpointNoValidRows(t *testing.T) {
	svc := &fakeReportService{genErr: fmt.Errorf("run: %w", cohort.ErrNoValidRows)}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/reports/generate", map[string]string{"record_id": "rec-1"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGenerateEndpointUpstreamFailure(t *testing.T) {
	svc := &fakeReportService{
		genErr: apierrors.NewUpstreamError("uploads", fmt.Errorf("connection refused")),
	}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/reports/generate", map[string]string{"record_id": "rec-1"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGenerateEndpointNoUploads(t *testing.T) {
	svc := &fakeReportService{genErr: services.ErrNoUploadsFound}
	router := newTestRouter(svc)

	w := postJSON(t, router, "/api/reports/generate", map[string]string{"record_id": "rec-1"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEndpoint(t *testing.T) {
	svc := &fakeReportService{files: []domain.ReportFile{
		{Filename: "LTV_Month_20240301_120000.csv", ReportType: domain.ReportTypeLTV},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reports []domain.ReportFile `json:"reports"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "LTV_Month_20240301_120000.csv", resp.Reports[0].Filename)
}

func TestListEndpointEmpty(t *testing.T) {
	svc := &fakeReportService{listErr: services.ErrNoReportsFound}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["count"])
}
