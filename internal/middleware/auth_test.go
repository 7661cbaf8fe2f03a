package middleware

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/tokenstore"
	"context"
	"github.com/gofiber/fiber/v2"
	"net/http/httptest"
	"testing"
	"time"
)

func newAuthApp(store tokenstore.TokenStore, jwtService jwt.JWTService) *fiber.App {
	m := NewMiddleware(store)
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		id, _ := c.Locals("user_id").(uint)
		return c.JSON(fiber.Map{"user_id": id})
	}
	app.Get("/private", m.AuthMiddleware(jwtService), whoami)
	app.Get("/public", m.OptionalAuthMiddleware(jwtService), whoami)
	return app
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Token abc", "abc", true},
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"Token ", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewJWTService("secret")
	store := tokenstore.NewMemoryStore()
	app := newAuthApp(store, jwtService)
	token, _ := jwtService.GenerateTokenUser(9, domain.RoleUser)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing token", "/private", "", fiber.StatusUnauthorized},
		{"garbage token", "/private", "Token garbage", fiber.StatusUnauthorized},
		{"token scheme", "/private", "Token " + token, fiber.StatusOK},
		{"bearer scheme", "/private", "Bearer " + token, fiber.StatusOK},
		{"anonymous public", "/public", "", fiber.StatusOK},
		{"bad token on public", "/public", "Token garbage", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	jwtService := jwt.NewJWTService("secret")
	store := tokenstore.NewMemoryStore()
	app := newAuthApp(store, jwtService)

	token, _ := jwtService.GenerateTokenUser(9, domain.RoleUser)
	claims, _ := jwtService.ParseTokenUser(token)
	_ = store.Revoke(context.Background(), claims.ID, time.Hour)

	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
