package response

import (
	"errors"
	"net/http"

	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// PageMeta is attached to paginated responses.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Paginated writes a page of items with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    items,
		Meta:    PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages},
	})
}

func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Error maps a domain error onto a status code and writes it. Errors outside the domain
// taxonomy are reported as a generic internal error so transport details never leak.
func Error(c *gin.Context, err error) {
	status, data := classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{Success: false, Error: data})
}

func classify(err error) (int, *ErrorData) {
	var (
		validationErr *domain.ValidationError
		submissionErr *domain.SubmissionError
	)

	switch {
	case errors.As(err, &submissionErr):
		if submissionErr.Kind == domain.SubmissionValidation {
			return http.StatusUnprocessableEntity, &ErrorData{Code: "SUBMISSION_REJECTED", Message: submissionErr.Message}
		}
		return http.StatusBadGateway, &ErrorData{Code: "SUBMISSION_FAILED", Message: submissionErr.Message}
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, &ErrorData{
			Code:    "VALIDATION_ERROR",
			Message: validationErr.Message,
			Fields:  validationErr.Fields,
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, &ErrorData{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, &ErrorData{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, &ErrorData{Code: "INVALID_STATE", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, &ErrorData{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, &ErrorData{Code: "FETCH_FAILED", Message: err.Error()}
	case errors.Is(err, domain.ErrPaymentRequired):
		return http.StatusPaymentRequired, &ErrorData{Code: "PAYMENT_REQUIRED", Message: domain.ErrPaymentRequired.Error()}
	case errors.Is(err, domain.ErrPayment):
		return http.StatusPaymentRequired, &ErrorData{Code: "PAYMENT_FAILED", Message: err.Error()}
	case errors.Is(err, domain.ErrSessionAbandoned):
		return http.StatusGone, &ErrorData{Code: "SESSION_ABANDONED", Message: domain.ErrSessionAbandoned.Error()}
	default:
		return http.StatusInternalServerError, &ErrorData{Code: "INTERNAL_ERROR", Message: "Internal Server Error"}
	}
}
