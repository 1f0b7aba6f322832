// Package middleware provides authentication, logging and rate limiting middleware.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"reticle/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// TokenRevokedFunc reports whether the token with the given jti has been
// revoked (logged out). Set by the server during startup; nil means no
// revocation store is available and tokens are accepted until expiry.
type TokenRevokedFunc func(ctx context.Context, jti string) bool

var tokenRevoked TokenRevokedFunc

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config, revoked TokenRevokedFunc) {
	cfg = c
	tokenRevoked = revoked
}

func parseUserID(c *fiber.Ctx, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// Validate issuer and audience
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "reticle-api" {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "reticle-client" {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token audience")
	}

	// Reject tokens invalidated by logout
	if jti, ok := claims["jti"].(string); ok && tokenRevoked != nil {
		if tokenRevoked(c.UserContext(), jti) {
			return 0, fiber.NewError(fiber.StatusUnauthorized, "Token has been revoked")
		}
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	subClaim, ok := claims["sub"]
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	subStr, ok := subClaim.(string)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject type")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	return uint(userIDVal), nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	userID, err := parseUserID(c, parts[1])
	if err != nil {
		var fe *fiber.Error
		if e, ok := err.(*fiber.Error); ok {
			fe = e
		} else {
			fe = fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	c.Locals("userID", userID)
	return c.Next()
}

// OptionalAuth resolves the user from the Authorization header when present
// but never rejects the request. Anonymous gallery reads pass through with
// no userID local; a valid token personalizes liked/favorited flags.
func OptionalAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Next()
	}

	if userID, err := parseUserID(c, parts[1]); err == nil {
		c.Locals("userID", userID)
	}

	return c.Next()
}
