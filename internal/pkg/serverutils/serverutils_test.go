package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"notefiber-editor-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/domain", func(ctx *fiber.Ctx) error {
		return NotFound("Note not found")
	})
	app.Get("/plain", func(ctx *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/private", JwtMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", ctx.Locals("user_id")))
	})
	return app
}

func signed(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newTestApp()

	t.Run("domain error keeps status and code", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/domain", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body BaseResponse[any]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "NOT_FOUND", body.Code)
		assert.Equal(t, "Note not found", body.Message)
	})

	t.Run("unknown error is a 500", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/plain", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		var body BaseResponse[any]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "SERVER_ERROR", body.Code)
	})
}

func TestJwtMiddleware(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing token", "", "", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, "other"), "", fiber.StatusUnauthorized},
		{"valid header", "Bearer " + signed(t, testSecret), "", fiber.StatusOK},
		{"valid query", "", signed(t, testSecret), fiber.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/private"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest("GET", target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	assert.NoError(t, ValidateRequest(request{Name: "vault", Password: "longenough"}))

	err := ValidateRequest(request{Password: "short"})
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, fiber.StatusBadRequest, domainErr.Status)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be at least 8", fields["password"])
}
