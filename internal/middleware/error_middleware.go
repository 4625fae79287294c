package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/app/views"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/logger"
)

// HandleAPIError maps the application error taxonomy onto HTTP responses.
// Each kind renders distinctly so clients can present authorization,
// validation, conflict and transient failures differently.
func HandleAPIError(c *gin.Context, err error) {
	if errors.Is(err, views.ErrInFlight) {
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "An identical submission is already in flight"),
		))
		return
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindAuthorization:
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error()),
		))
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error()),
		))
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error()),
		))
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeNotFound, err.Error()),
		))
	case apperrors.KindTransient:
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeStoreUnavailable, err.Error()),
		))
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		))
	}
}
