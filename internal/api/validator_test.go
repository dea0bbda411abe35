package api

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoops-ai/backend/internal/models"
)

func TestRequestValidator_Validate(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name      string
		req       submitDocumentsRequest
		wantField string
	}{
		{name: "valid", req: submitDocumentsRequest{Files: []models.FileDescriptor{{Name: "a.pdf"}}}},
		{name: "nil files", req: submitDocumentsRequest{}, wantField: "files"},
		{name: "empty files", req: submitDocumentsRequest{Files: []models.FileDescriptor{}}, wantField: "files"},
		{
			name:      "second name missing",
			req:       submitDocumentsRequest{Files: []models.FileDescriptor{{Name: "a.pdf"}, {}}},
			wantField: "files[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assertAPIError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")
			assert.Contains(t, err.(*APIError).Message, tt.wantField)
		})
	}
}

func TestRequestValidator_Var(t *testing.T) {
	v := NewRequestValidator()

	for _, s := range []string{"processing", "completed", "error"} {
		assert.NoError(t, v.Var("status", s, "document_status"), s)
	}

	err := v.Var("status", "archived", "document_status")
	assertAPIError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")
	assert.Contains(t, err.(*APIError).Message, "status")
}

func TestSetupMiddleware_RegistersValidator(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, MiddlewareOptions{})
	require.NotNil(t, e.Validator)

	assert.Error(t, e.Validator.Validate(&submitDocumentsRequest{}))
}
