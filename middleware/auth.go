package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func segredoJWT() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dualm-segredo-dev")
}

// Claims do token: usuário, nível de acesso e o domínio da empresa em
// que ele se autenticou. O token de um tenant não vale em outro.
type Claims struct {
	IDUsuario int    `json:"id_usuario"`
	Nivel     string `json:"nivel"`
	Dominio   string `json:"dominio"`
	jwt.RegisteredClaims
}

// GerarJWT assina um token HS256 com validade de 24 horas.
func GerarJWT(idUsuario int, email, nivel, dominio string) (string, error) {
	claims := Claims{
		IDUsuario: idUsuario,
		Nivel:     nivel,
		Dominio:   dominio,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(segredoJWT())
}

// JWTMiddleware valida o Bearer token e guarda os claims no contexto.
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{
				"error": "Token de autorização requerido",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(401).JSON(fiber.Map{
				"error": "Formato de token inválido",
			})
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return segredoJWT(), nil
		})
		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{
				"error": "Token inválido",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{
				"error": "Claims inválidos",
			})
		}

		// O token carrega o domínio de origem; requests para outro
		// tenant são recusados antes de tocar o banco.
		if dominio, ok := c.Locals("dominio").(string); ok && claims.Dominio != "" && claims.Dominio != dominio {
			return c.Status(403).JSON(fiber.Map{
				"error": "Token não pertence a esta empresa",
			})
		}

		c.Locals("id_usuario", claims.IDUsuario)
		c.Locals("nivel", claims.Nivel)
		c.Locals("email_usuario", claims.Subject)

		return c.Next()
	}
}

// RequireNivel exige que o usuário autenticado tenha um dos níveis
// informados.
func RequireNivel(niveis ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nivel, ok := c.Locals("nivel").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{
				"error": "Nível de acesso não encontrado",
			})
		}
		for _, n := range niveis {
			if nivel == n {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Acesso negado: nível insuficiente",
		})
	}
}
