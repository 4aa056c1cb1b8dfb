package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/payment"
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/openshop/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to HTTP responses. Transition and
// allocation failures map to 422 so clients can tell a rejected operation
// from a malformed request.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "Resource not found")
		return
	}
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		h.Error(c, http.StatusConflict, dto.ErrCodeConcurrencyConflict, err.Error())
		return
	}

	var allocErr *order.ItemAllocationError
	if errors.As(err, &allocErr) {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock, allocErr.Error())
		return
	}

	var gatewayErr *payment.GatewayDisabledError
	if errors.As(err, &gatewayErr) {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeGatewayDisabled, gatewayErr.Error())
		return
	}

	var orderErr *order.OrderError
	if errors.As(err, &orderErr) {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, orderErr.Message)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		statusCode := statusForDomainCode(domainErr.Code)
		code := apiCodeForDomainCode(domainErr.Code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c)))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

func statusForDomainCode(code string) int {
	return dto.GetHTTPStatus(apiCodeForDomainCode(code))
}

// apiCodeForDomainCode maps domain error codes onto the API error
// vocabulary. Unknown codes fall through to validation so bad input
// never surfaces as an internal error.
func apiCodeForDomainCode(code string) string {
	switch code {
	case "NOT_FOUND":
		return dto.ErrCodeNotFound
	case "ALREADY_EXISTS":
		return dto.ErrCodeConflict
	case "CONCURRENCY_CONFLICT":
		return dto.ErrCodeConcurrencyConflict
	case "INVALID_STATE", "INVALID_TRANSITION":
		return dto.ErrCodeInvalidState
	case "INSUFFICIENT_STOCK":
		return dto.ErrCodeInsufficientStock
	default:
		return dto.ErrCodeValidation
	}
}
