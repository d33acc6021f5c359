package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/auth"
	"github.com/noman2111ni/Retail-Managment-System/internal/application/resource"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/apiclient"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
)

func serveError(t *testing.T, err error) (int, dto.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &BaseHandler{}
	r := gin.New()
	r.Use(logger.GinMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { h.HandleError(c, err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHandleError(t *testing.T) {
	tokenInvalid := &apiclient.APIError{StatusCode: http.StatusUnauthorized, Code: "token_not_valid", Detail: "Given token not valid for any token type"}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "reauth wins over its cause",
			err:        &auth.ReauthError{Cause: tokenInvalid},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "REAUTH_REQUIRED",
			wantMsg:    "Refresh token expired, login required.",
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("creating: %w", shared.NewDomainError("INVALID_INPUT", "name is required")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
			wantMsg:    "name is required",
		},
		{
			name:       "read-only",
			err:        resource.ErrReadOnly,
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "READ_ONLY_RESOURCE",
		},
		{
			name:       "api error keeps upstream status and code",
			err:        tokenInvalid,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_NOT_VALID",
			wantMsg:    "Given token not valid for any token type",
		},
		{
			name:       "api error without code",
			err:        &apiclient.APIError{StatusCode: http.StatusConflict, Detail: "Duplicate SKU"},
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeUpstream,
			wantMsg:    "Duplicate SKU",
		},
		{
			name:       "transport failure",
			err:        &apiclient.TransportError{Method: "GET", URL: "http://x/api/products/", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstreamUnavailable,
		},
		{
			name:       "deadline",
			err:        &apiclient.TransportError{Method: "GET", URL: "http://x/api/products/", Err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   dto.ErrCodeTimeout,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := serveError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
		})
	}
}
