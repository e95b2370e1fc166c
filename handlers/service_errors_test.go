package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/coffee-shop/services"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        services.NewDomainError(services.ErrorTypeNotFound, "drink not found", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   utils.CodeNotFound,
			wantMsg:    "drink not found",
		},
		{
			name:       "validation",
			err:        services.NewDomainError(services.ErrorTypeValidation, "Validation failed", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   utils.CodeUnprocessable,
			wantMsg:    "Validation failed",
		},
		{
			name:       "conflict",
			err:        services.NewDomainError(services.ErrorTypeConflict, "a drink with this title already exists", nil),
			wantStatus: http.StatusConflict,
			wantCode:   utils.CodeConflict,
			wantMsg:    "a drink with this title already exists",
		},
		{
			name:       "internal hides cause",
			err:        services.WrapInternal("failed to list drinks", errors.New("password authentication failed")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   utils.CodeInternal,
			wantMsg:    "An internal error occurred",
		},
		{
			name:       "plain error",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   utils.CodeInternal,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantStatus, body.Error)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestHandleServiceError_LogsInternal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	HandleServiceError(httptest.NewRecorder(), services.WrapInternal("boom", errors.New("x")), zap.New(core))

	assert.Equal(t, 1, logs.FilterMessage("internal server error").Len())
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())

	assert.Empty(t, w.Body.String())
}
