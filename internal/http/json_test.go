package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/bookms/bookms-admin/internal/errors"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest, "validation"},
		{"not found", apperrors.NotFound("missing"), http.StatusNotFound, "not_found"},
		{"invalid credentials", apperrors.InvalidCredentials(), http.StatusUnauthorized, "invalid_credentials"},
		{"disabled", fmt.Errorf("login: %w", apperrors.AccountDisabled()), http.StatusForbidden, "account_disabled"},
		{"sso", apperrors.SSOExchangeFailed(errors.New("state mismatch")), http.StatusBadGateway, "sso_exchange_failed"},
		{"unavailable", apperrors.New(apperrors.ErrCodeUnavailable, "down"), http.StatusServiceUnavailable, "unavailable"},
		{"plain error", context.DeadlineExceeded, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusForError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteAppError_HidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, apperrors.Internal("pg: connection refused on 10.0.0.5"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal","message":"Something went wrong"}`, rec.Body.String())
}

func TestWriteAppError_UserMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, apperrors.InvalidCredentials())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"invalid_credentials"`)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	rec := httptest.NewRecorder()
	ok := DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`)), &dst)
	assert.True(t, ok)
	assert.Equal(t, "a@b.co", dst.Email)

	rec = httptest.NewRecorder()
	ok = DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","admin":true}`)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}
