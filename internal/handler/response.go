package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumetailor/internal/domain"
	"resumetailor/internal/rewriter"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", "unsupported document format; allowed: docx, pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity, "PARSE_ERROR", "document cannot be opened as a valid docx or pdf"
	case errors.Is(err, domain.ErrStructuralMismatch):
		return http.StatusConflict, "STRUCTURAL_MISMATCH", "rewrite target does not resolve against the document"
	case errors.Is(err, domain.ErrEmptyTarget):
		return http.StatusBadRequest, "EMPTY_TARGET", "target job description is required"
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable, "GENERATOR_UNAVAILABLE", "rewrite generator is not configured"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "result storage is not configured"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "result upload to storage failed"
	case errors.Is(err, rewriter.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "rewrite generator is rate limited; retry later"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	var rlErr *rewriter.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
	}
	RespondError(c, status, code, msg)
}
