package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses.
// Store and render failures never leak their cause outside debug mode.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom)

	var (
		status int
		detail *dto.ErrorDetail
	)
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOr(custom, "Validation failed")).
			WithSeverity(dto.ErrorSeverityWarning)
		if hasCustom && custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
			if field, ok := custom.Details["field"].(string); ok {
				detail = detail.WithField(field)
			}
		}
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status = http.StatusNotFound
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOr(custom, "Resource not found")).
			WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrTokenExpired):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrStore):
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Failed to read report data").
			WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrExportRender):
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeExportFailed, "Failed to generate export").
			WithSeverity(dto.ErrorSeverityCritical)
	default:
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Str("requestID", c.GetString(RequestIDKey)).Msg("Request failed")
	}

	if gin.Mode() != gin.ReleaseMode {
		if hasCustom && custom.Detail() != "" {
			detail = detail.WithDebugInfo("%s", custom.Detail())
		} else {
			detail = detail.WithDebugInfo("%s", err.Error())
		}
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func messageOr(custom *apperrors.CustomError, fallback string) string {
	if custom != nil && custom.Message != "" {
		return custom.Message
	}
	return fallback
}
