package middleware

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/log"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"strings"
)

// bearerToken extracts the token from "Token <t>" or "Bearer <t>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (m Middleware) authenticate(c *fiber.Ctx, jwtService jwt.JWTService, token string) error {
	claims, err := jwtService.ParseTokenUser(token)
	if err != nil {
		return err
	}

	revoked, err := m.tokenStore.IsRevoked(c.Context(), claims.ID)
	if err != nil {
		log.L.Error("check revoked token", zap.Error(err))
		return domain.ErrTokenInvalid
	}
	if revoked {
		return domain.ErrTokenRevoked
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	c.Locals("token_id", claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals("token_exp", claims.ExpiresAt.Time)
	}
	return nil
}

func (m Middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrUnauthenticated)
		}
		if err := m.authenticate(c, jwtService, token); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}
		return c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent
// and lets anonymous requests through. A bad token is still rejected.
func (m Middleware) OptionalAuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		token, ok := bearerToken(header)
		if !ok {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenInvalid)
		}
		if err := m.authenticate(c, jwtService, token); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}
		return c.Next()
	}
}
