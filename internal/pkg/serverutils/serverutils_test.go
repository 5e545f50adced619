package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-assistant-be/internal/pkg/logger"
)

type sampleRequest struct {
	Message string `json:"message" validate:"required,max=5"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "سلام"}))

	err := ValidateRequest(sampleRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "is required", validationErr.Fields["Message"])

	// max counts characters, not bytes
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "مرحبا"}))
	err = ValidateRequest(sampleRequest{Message: "مرحباً بك"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "must be at most 5 characters", validationErr.Fields["Message"])
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusConflict, "busy") })
	app.Get("/validation", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password in here") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/fiber", fiber.StatusConflict, "busy"},
		{"/validation", fiber.StatusBadRequest, "Validation failed"},
		{"/boom", fiber.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var res BaseResponse[any]
			require.NoError(t, json.Unmarshal(body, &res))
			assert.False(t, res.Success)
			assert.Equal(t, tt.status, res.Code)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}
