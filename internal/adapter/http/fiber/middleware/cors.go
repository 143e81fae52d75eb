package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/songorder/pkg/config"
)

// NewCORS creates a CORS middleware from application config. The chat widget
// only needs GET and POST.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	join := func(values []string, fallback string) string {
		if len(values) == 0 {
			return fallback
		}
		return strings.Join(values, ",")
	}

	maxAge := 86400
	if cfg.MaxAge > 0 {
		maxAge = cfg.MaxAge
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     join(cfg.AllowedOrigins, "*"),
		AllowMethods:     join(cfg.AllowedMethods, "GET,POST,OPTIONS"),
		AllowHeaders:     join(cfg.AllowedHeaders, "Origin,Content-Type,Accept,Authorization,X-Request-ID"),
		ExposeHeaders:    join(cfg.ExposeHeaders, "Content-Length"),
		AllowCredentials: cfg.Credentials,
		MaxAge:           maxAge,
	})
}
