package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "cohortcli/internal/errors"
)

// maxRequestBody caps JSON request bodies on validated routes.
const maxRequestBody = 10 << 20 // 10MB

// RequestValidator checks request payloads against their struct tags.
// It registers the "brand" rule used by the report trigger and reports
// failures as field-level validation errors.
type RequestValidator struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

func NewRequestValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RequestValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	v.RegisterValidation("brand", isValidBrand)

	// Error messages name the JSON field, not the Go field
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{
		validate:     v,
		logger:       logger.With(slog.String("component", "request_validator")),
		errorHandler: errorHandler,
	}
}

// Guard rejects oversized or syntactically invalid JSON bodies before
// they reach a handler. Read methods pass through untouched.
func (m *RequestValidator) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > maxRequestBody {
			m.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{
					"max_size": maxRequestBody,
					"size":     r.ContentLength,
				},
			))
			return
		}

		if r.Body != nil && r.ContentLength > 0 {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to read request body",
					slog.String("error", err.Error()))
				m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 && !json.Valid(body) {
				m.errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					"INVALID_JSON",
					"Request body contains invalid JSON",
				))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateStruct runs tag validation and converts failures into the
// API's field-level validation error shape.
func (m *RequestValidator) ValidateStruct(v interface{}) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors []apierrors.ValidationError
	for _, fe := range err.(validator.ValidationErrors) {
		fieldErrors = append(fieldErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return apierrors.NewValidationErrors(fieldErrors)
}

func validationMessage(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	case "brand":
		return fmt.Sprintf("%s must be a valid brand slug", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidBrand accepts the slug form brands are registered under:
// 1 to 64 characters of lowercase letters, digits, hyphen or underscore.
func isValidBrand(fl validator.FieldLevel) bool {
	brand := fl.Field().String()
	if len(brand) < 1 || len(brand) > 64 {
		return false
	}
	for _, ch := range brand {
		if !((ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_') {
			return false
		}
	}
	return true
}
