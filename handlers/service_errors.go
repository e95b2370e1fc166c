package handlers

import (
	"net/http"

	"github.com/upb/coffee-shop/services"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := services.GetErrorMessage(err)
	details := services.GetErrorDetails(err)
	if len(details) == 0 {
		details = nil
	}

	var werr error
	switch {
	case services.IsNotFoundError(err):
		werr = utils.WriteNotFound(w, message)

	case services.IsValidationError(err):
		werr = utils.WriteUnprocessable(w, message, details)

	case services.IsConflictError(err):
		werr = utils.WriteConflict(w, message, details)

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		werr = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		werr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if werr != nil {
		logger.Error("failed to write error response", zap.Error(werr))
	}
}
