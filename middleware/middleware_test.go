package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"shopledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testSecret = []byte("test-secret")

// Helper to create an app with a pre-local middleware that sets userRole
func makeAppWithRole(role string, check fiber.Handler) *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserRole, role)
		return c.Next()
	})

	app.Use(check)

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(200).SendString("ok")
	})

	return app
}

func TestOwnerRequired(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{models.RoleOwner, 200},
		{models.RoleStaff, 403},
		{"admin", 403},
	}
	for _, tc := range cases {
		app := makeAppWithRole(tc.role, OwnerRequired)
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.role)
	}
}

func TestCheckRole_AllowsAnyListedRole(t *testing.T) {
	app := makeAppWithRole(models.RoleStaff, CheckRole(models.RoleOwner, models.RoleStaff))
	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCheckRole_MissingRole(t *testing.T) {
	app := fiber.New()
	app.Get("/test", CheckRole(models.RoleOwner), func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func newJWTApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTMiddleware(testSecret), func(c *fiber.Ctx) error {
		claims, ok := ExtractClaims(c)
		if !ok {
			return c.SendStatus(500)
		}
		return c.SendString(claims.ShopID + "/" + claims.UserID + "/" + claims.Role)
	})
	return app
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	user := &models.User{ID: "u1", ShopID: "s1", Role: models.RoleStaff}
	token, err := CreateJWT(testSecret, user, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newJWTApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "s1/u1/staff", string(body))
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	user := &models.User{ID: "u1", ShopID: "s1", Role: models.RoleOwner}
	expired, err := CreateJWT(testSecret, user, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := CreateJWT([]byte("other"), user, time.Hour)
	require.NoError(t, err)
	noShop, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JwtClaims{UserID: "u1", Role: "owner"}).SignedString(testSecret)
	require.NoError(t, err)
	adminRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JwtClaims{UserID: "u1", ShopID: "s1", Role: "admin"}).SignedString(testSecret)
	require.NoError(t, err)

	headers := map[string]string{
		"missing":   "",
		"no bearer": expired,
		"expired":   "Bearer " + expired,
		"wrong key": "Bearer " + wrongKey,
		"no shop":   "Bearer " + noShop,
		"bad role":  "Bearer " + adminRole,
		"garbage":   "Bearer abc.def.ghi",
	}
	app := newJWTApp()
	for name, h := range headers {
		req := httptest.NewRequest("GET", "/me", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, name)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error {
		c.Locals(LocalShopID, "s1")
		return c.SendString("ok")
	})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "s1", entries[0].ContextMap()["shop_id"])
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(500), entries[1].ContextMap()["status"])
}
