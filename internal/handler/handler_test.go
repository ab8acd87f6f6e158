package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/project-tracker/internal/domain"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    domain.ErrorCode
		wantMessage string
	}{
		{"validation", domain.NewValidationError("members", domain.MsgProjectComposition), http.StatusBadRequest, domain.CodeValidationFailed, domain.MsgProjectComposition},
		{"wrapped validation", fmt.Errorf("update: %w", domain.NewValidationError("", domain.MsgDeveloperStatusOnly)), http.StatusBadRequest, domain.CodeValidationFailed, domain.MsgDeveloperStatusOnly},
		{"credentials", domain.ErrInvalidCredentials, http.StatusBadRequest, domain.CodeValidationFailed, MsgInvalidCredentials},
		{"user exists", domain.ErrUserExists, http.StatusBadRequest, domain.CodeUserExists, MsgUserExists},
		{"anonymous", domain.ErrAuthenticationRequired, http.StatusUnauthorized, domain.CodeUnauthorized, "Authentication credentials were not provided."},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, domain.CodeForbidden, MsgForbidden},
		{"task not found", domain.ErrTaskNotFound, http.StatusNotFound, domain.CodeNotFound, MsgNotFound},
		{"project not found", domain.ErrProjectNotFound, http.StatusNotFound, domain.CodeNotFound, MsgNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, domain.CodeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.wantCode), body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
		})
	}
}

func TestPageFromRequest(t *testing.T) {
	page, err := pageFromRequest(httptest.NewRequest(http.MethodGet, "/?limit=500&offset=10", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Limit: domain.MaxPageLimit, Offset: 10}, page)

	page, err = pageFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageLimit, page.Limit)

	_, err = pageFromRequest(httptest.NewRequest(http.MethodGet, "/?limit=abc", nil))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "limit", vErr.Field)
}

func TestUpdateTaskRequest_Developer(t *testing.T) {
	decode := func(body string) UpdateTaskRequest {
		var req UpdateTaskRequest
		require.NoError(t, json.NewDecoder(strings.NewReader(body)).Decode(&req))
		return req
	}

	p, err := decode(`{"status":"Done"}`).patch()
	require.NoError(t, err)
	assert.Nil(t, p.Developer)

	p, err = decode(`{"developer":null}`).patch()
	require.NoError(t, err)
	require.NotNil(t, p.Developer)
	assert.Nil(t, *p.Developer)

	p, err = decode(`{"developer":"u1"}`).patch()
	require.NoError(t, err)
	require.NotNil(t, p.Developer)
	assert.Equal(t, "u1", **p.Developer)

	_, err = decode(`{"developer":42}`).patch()
	assert.Error(t, err)
}

func TestDecodeRequest_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"username":"u","email":"bad","user_type":"Developer","password":"secret123","confirm_password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))

	var dst RegisterRequest
	assert.False(t, decodeRequest(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "email", resp.Error.Field)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("{"))
	assert.False(t, decodeRequest(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
