package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dualmtech/dualm-api/models"
)

// ObterEmpresa devolve o perfil da clínica do tenant. A tabela tem uma
// linha só.
func ObterEmpresa(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F60")
	}

	var e models.Empresa
	err := db.QueryRow(c.Context(), `
		SELECT id_empresa, nome, cnpj, telefone, email, endereco
		FROM empresa LIMIT 1`).
		Scan(&e.IDEmpresa, &e.Nome, &e.CNPJ, &e.Telefone, &e.Email, &e.Endereco)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F60", "Perfil da empresa não cadastrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F60", "Erro ao buscar o perfil da empresa")
	}
	return resposta(c, 200, "S60", e)
}

func AtualizarEmpresa(c *fiber.Ctx) error {
	var req models.AtualizarEmpresaRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F60", "Dados inválidos")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F60")
	}

	tag, err := db.Exec(c.Context(), `
		UPDATE empresa
		SET nome = COALESCE($1, nome),
		    cnpj = COALESCE($2, cnpj),
		    telefone = COALESCE($3, telefone),
		    email = COALESCE($4, email),
		    endereco = COALESCE($5, endereco)`,
		req.Nome, req.CNPJ, req.Telefone, req.Email, req.Endereco)
	if err != nil {
		return respostaErro(c, 500, "F60", "Erro ao atualizar o perfil da empresa")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F60", "Perfil da empresa não cadastrado")
	}
	return resposta(c, 200, "S60", fiber.Map{"message": "Perfil da empresa atualizado com sucesso"})
}
