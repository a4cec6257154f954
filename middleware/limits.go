package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig parametriza um limitador de requisições.
type RateLimitConfig struct {
	Max        int
	Expiration time.Duration
	Message    string
}

// DefaultRateLimit vale para a API inteira.
var DefaultRateLimit = RateLimitConfig{
	Max:        100,
	Expiration: 15 * time.Minute,
	Message:    "Muitas requisições, tente novamente mais tarde",
}

// AuthRateLimit protege login e redefinição de senha.
var AuthRateLimit = RateLimitConfig{
	Max:        20,
	Expiration: 30 * time.Minute,
	Message:    "Muitas tentativas de login, tente novamente mais tarde",
}

// CreateRateLimiter cria o middleware de rate limiting com a
// configuração informada, chaveado pelo IP do cliente.
func CreateRateLimiter(config RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.Max,
		Expiration: config.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       true,
				"message":     config.Message,
				"retry_after": int(config.Expiration.Seconds()),
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}

// DefaultRateLimiter aplica o limite padrão.
func DefaultRateLimiter() fiber.Handler {
	return CreateRateLimiter(DefaultRateLimit)
}

// AuthRateLimiter aplica o limite dos endpoints de autenticação.
func AuthRateLimiter() fiber.Handler {
	return CreateRateLimiter(AuthRateLimit)
}

// BodySizeLimit recusa corpos maiores que maxSize bytes.
func BodySizeLimit(maxSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > maxSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error":    true,
				"message":  "O tamanho da requisição excede o limite permitido",
				"max_size": maxSize,
			})
		}
		return c.Next()
	}
}

// SecurityHeaders adiciona os headers de segurança padrão.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		return c.Next()
	}
}
