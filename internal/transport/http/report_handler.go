package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "cohortcli/internal/errors"
	"cohortcli/internal/services"
	"cohortcli/pkg/contracts/domain"
)

// ReportService is the business operation surface the handler needs.
type ReportService interface {
	Generate(ctx context.Context, recordID, brand string) (*domain.RunSummary, error)
	ListReports(ctx context.Context) ([]domain.ReportFile, error)
}

// StructValidator runs struct-tag validation on bound request bodies.
type StructValidator interface {
	ValidateStruct(v interface{}) error
}

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	service      ReportService
	errorHandler *apierrors.ErrorHandler
	validate     StructValidator
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, errorHandler *apierrors.ErrorHandler, validate StructValidator, logger *slog.Logger) *ReportHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:      service,
		errorHandler: errorHandler,
		validate:     validate,
		logger:       logger.With(slog.String("handler", "reports")),
	}
}

// Routes mounts the report endpoints
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/generate", h.Generate)
	r.Get("/", h.List)
	return r
}

// GenerateRequest is the payload for POST /api/reports/generate
type GenerateRequest struct {
	RecordID string `json:"record_id" validate:"required,min=1"`
	Brand    string `json:"brand,omitempty" validate:"omitempty,brand"`
}

// Bind implements the render.Binder interface for request validation
func (r *GenerateRequest) Bind(req *http.Request) error {
	r.RecordID = strings.TrimSpace(r.RecordID)
	if r.RecordID == "" {
		return errors.New("record_id is required")
	}
	return nil
}

// Generate handles POST /api/reports/generate. It runs the full
// pipeline synchronously and answers with the run summary.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := render.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if h.validate != nil {
		if err := h.validate.ValidateStruct(&req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	h.logger.InfoContext(r.Context(), "report generation requested",
		slog.String("record_id", req.RecordID),
		slog.String("brand", req.Brand))

	summary, err := h.service.Generate(r.Context(), req.RecordID, req.Brand)
	if err != nil {
		if errors.Is(err, services.ErrNoUploadsFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrRecordNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, summary)
}

// List handles GET /api/reports and returns the kept report files.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListReports(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoReportsFound) {
			render.JSON(w, r, map[string]interface{}{
				"reports": []domain.ReportFile{},
				"count":   0,
			})
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"reports": files,
		"count":   len(files),
	})
}
