package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Mode      string // "none", "api-key", "jwt"
	APIKey    string
	JWTSecret string
}

// NewAuthMiddleware returns a Fiber middleware validating the
// Authorization header according to the configured mode. Probe and
// metrics endpoints are always open.
func NewAuthMiddleware(cfg AuthConfig, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Mode == "none" {
			return c.Next()
		}

		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return problemResponse(c, fiber.StatusUnauthorized,
				"missing_auth", "Unauthorized", "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return problemResponse(c, fiber.StatusUnauthorized,
				"invalid_auth_scheme", "Unauthorized", "Authorization header must use Bearer scheme")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		switch cfg.Mode {
		case "api-key":
			if cfg.APIKey != "" && token == cfg.APIKey {
				return c.Next()
			}
		case "jwt":
			if err := verifyJWT(token, cfg.JWTSecret); err == nil {
				return c.Next()
			} else {
				logger.Debug().Err(err).Msg("jwt verification failed")
			}
		}

		logger.Warn().
			Str("path", path).
			Str("method", c.Method()).
			Msg("unauthorized request")
		return problemResponse(c, fiber.StatusUnauthorized,
			"invalid_credentials", "Unauthorized", "Invalid credentials")
	}
}

// verifyJWT validates an HS256 token against the shared secret.
func verifyJWT(token, secret string) error {
	if secret == "" {
		return fmt.Errorf("jwt auth mode requires a configured secret")
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return fmt.Errorf("parsing token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("token invalid")
	}
	return nil
}
