// Package handler implements the dashboard gateway endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/apiclient"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, logger.GetRequestID(c.Request.Context())))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps an application error onto the response:
// reauth and local domain errors keep their codes, API rejections keep
// the upstream status and message, transport failures become 502.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	requestID := logger.GetRequestID(c.Request.Context())

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	if apiErr, ok := apiclient.AsAPIError(err); ok {
		code := dto.ErrCodeUpstream
		if apiErr.Code != "" {
			code = strings.ToUpper(apiErr.Code)
		}
		resp := dto.NewErrorResponseWithRequestID(code, apiErr.Error(), requestID)
		resp.Error.Fields = apiErr.Fields
		c.JSON(apiErr.StatusCode, resp)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "Retail API did not answer in time")
		return
	}

	var transportErr *apiclient.TransportError
	if errors.As(err, &transportErr) {
		logger.GetGinLogger(c).Warn("Retail API unreachable", zap.Error(err))
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstreamUnavailable, "Retail API is unreachable")
		return
	}

	logger.GetGinLogger(c).Error("Unhandled gateway error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Internal error")
}
