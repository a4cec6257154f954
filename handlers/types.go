package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type BodyResponse struct {
	IntCode string        `json:"intCode"`
	Data    []interface{} `json:"data"`
}

type StandardResponse struct {
	StatusCode int          `json:"statusCode"`
	Body       BodyResponse `json:"body"`
}

// Banco é o recorte do pool que os handlers usam; o middleware de
// tenant coloca um *pgxpool.Pool em Locals("db") e os testes colocam um
// pgxmock.
type Banco interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

func bancoDoTenant(c *fiber.Ctx) (Banco, bool) {
	db, ok := c.Locals("db").(Banco)
	return db, ok
}

// resposta monta o envelope padrão usado em todas as respostas da API.
func resposta(c *fiber.Ctx, status int, intCode string, data ...interface{}) error {
	if data == nil {
		data = []interface{}{}
	}
	return c.Status(status).JSON(StandardResponse{
		StatusCode: status,
		Body: BodyResponse{
			IntCode: intCode,
			Data:    data,
		},
	})
}

func respostaErro(c *fiber.Ctx, status int, intCode, mensagem string) error {
	return resposta(c, status, intCode, fiber.Map{"error": mensagem})
}

func semBanco(c *fiber.Ctx, intCode string) error {
	return respostaErro(c, 500, intCode, "Conexão com o banco da empresa indisponível")
}
