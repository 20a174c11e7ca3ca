package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func jwtTestApp(captured *map[string]interface{}) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/protected", func(c *fiber.Ctx) error {
		*captured = map[string]interface{}{
			"user_id":    c.Locals("user_id"),
			"user_email": c.Locals("user_email"),
			"user_name":  c.Locals("user_name"),
			"user_role":  c.Locals("user_role"),
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestJWTProtectedExtractsIdentityClaims(t *testing.T) {
	var captured map[string]interface{}
	app := jwtTestApp(&captured)

	token := signedToken(t, jwt.MapClaims{
		"sub":   "42",
		"email": "student@example.com",
		"name":  "Sam Student",
		"role":  "Student",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(42), captured["user_id"])
	require.Equal(t, "student@example.com", captured["user_email"])
	require.Equal(t, "Sam Student", captured["user_name"])
	require.Equal(t, "student", captured["user_role"])
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	var captured map[string]interface{}
	app := jwtTestApp(&captured)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsBadSignature(t *testing.T) {
	var captured map[string]interface{}
	app := jwtTestApp(&captured)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	var captured map[string]interface{}
	app := jwtTestApp(&captured)

	token := signedToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
