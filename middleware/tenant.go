package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dualmtech/dualm-api/database"
)

// TenantMiddleware descobre a empresa do request pelo header X-Dominio
// (ou query dominio), resolve o banco dela no registro central e deixa o
// pool em Locals("db") para os handlers.
func TenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dominio := c.Get("X-Dominio")
		if dominio == "" {
			dominio = c.Query("dominio")
		}
		if dominio == "" {
			return c.Status(400).JSON(fiber.Map{
				"error": "Domínio da empresa não informado",
			})
		}

		pool, err := database.PoolDoTenant(c.Context(), dominio)
		if errors.Is(err, database.ErrEmpresaNaoEncontrada) {
			return c.Status(404).JSON(fiber.Map{
				"error": "Empresa não cadastrada",
			})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{
				"error": "Erro ao conectar ao banco da empresa",
			})
		}

		c.Locals("dominio", dominio)
		c.Locals("db", pool)
		return c.Next()
	}
}
