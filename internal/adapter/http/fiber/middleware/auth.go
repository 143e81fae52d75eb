package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

// SubjectKey holds the token subject in fiber locals.
const SubjectKey = "subject"

// GatewayAuth accepts HS256 bearer tokens signed with jwt.secret. Issuer and
// audience are checked when configured.
func GatewayAuth(cfg config.JWTConfig, log *zap.Logger) fiber.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.Secret)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil {
			log.Debug("Rejected gateway token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(SubjectKey, claims.Subject)
		return c.Next()
	}
}
