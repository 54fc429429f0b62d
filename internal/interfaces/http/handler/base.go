package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/logger"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/dto"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a list response
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total, limit int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, limit))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindError answers a failed ShouldBind*: field details for validation
// failures, INVALID_JSON for anything the decoder rejected.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			middleware.GetRequestID(c),
			details,
		))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
}

// ParseID reads the :id path parameter as a UUID. On failure it writes a
// 400 response and returns false.
func (h *BaseHandler) ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData converts err like HandleError and keeps data in the
// body. Process endpoints use it to return a computed match whose write failed.
func (h *BaseHandler) HandleErrorWithData(c *gin.Context, err error, data any) {
	if err == nil {
		return
	}
	info := ErrorInfo(err)
	status := dto.GetHTTPStatus(info.Code)
	info.RequestID = middleware.GetRequestID(c)

	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("code", info.Code),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, dto.Response{Success: false, Data: data, Error: info})
}

// ErrorInfo maps err to its wire form. Unknown errors become INTERNAL_ERROR
// and their text is not exposed.
func ErrorInfo(err error) *dto.ErrorInfo {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return &dto.ErrorInfo{Code: domainErr.Code, Message: domainErr.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Request was cancelled before it completed"}
	}
	return &dto.ErrorInfo{Code: dto.ErrCodeInternal, Message: "An unexpected error occurred"}
}
