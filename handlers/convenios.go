package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dualmtech/dualm-api/models"
)

func CriarConvenio(c *fiber.Ctx) error {
	var req models.ConvenioRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F40", "Dados inválidos")
	}
	if req.Nome == "" {
		return respostaErro(c, 400, "F40", "O nome do convênio é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F40")
	}

	var id int
	err := db.QueryRow(c.Context(),
		`INSERT INTO convenios (nome) VALUES ($1) RETURNING id_convenio`, req.Nome).Scan(&id)
	if ehViolacaoUnica(err) {
		return respostaErro(c, 409, "F40", "Já existe convênio com este nome")
	}
	if err != nil {
		return respostaErro(c, 500, "F40", "Erro ao cadastrar o convênio")
	}
	return resposta(c, 201, "S40", fiber.Map{"id_convenio": id, "message": "Convênio cadastrado com sucesso"})
}

func ListarConvenios(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F40")
	}

	rows, err := db.Query(c.Context(),
		`SELECT id_convenio, nome FROM convenios ORDER BY nome`)
	if err != nil {
		return respostaErro(c, 500, "F40", "Erro ao listar convênios")
	}
	defer rows.Close()

	convenios := []models.Convenio{}
	for rows.Next() {
		var co models.Convenio
		if err := rows.Scan(&co.IDConvenio, &co.Nome); err != nil {
			return respostaErro(c, 500, "F40", "Erro ao ler convênios")
		}
		convenios = append(convenios, co)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F40", "Erro ao listar convênios")
	}
	return resposta(c, 200, "S40", fiber.Map{"convenios": convenios, "total": len(convenios)})
}

func AtualizarConvenio(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F40", "ID de convênio inválido")
	}

	var req models.ConvenioRequest
	if err := c.BodyParser(&req); err != nil || req.Nome == "" {
		return respostaErro(c, 400, "F40", "O nome do convênio é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F40")
	}

	tag, err := db.Exec(c.Context(),
		`UPDATE convenios SET nome = $1 WHERE id_convenio = $2`, req.Nome, id)
	if err != nil {
		return respostaErro(c, 500, "F40", "Erro ao atualizar o convênio")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F40", "Convênio não encontrado")
	}
	return resposta(c, 200, "S40", fiber.Map{"message": "Convênio atualizado com sucesso"})
}

func ExcluirConvenio(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F40", "ID de convênio inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F40")
	}

	tag, err := db.Exec(c.Context(),
		`DELETE FROM convenios WHERE id_convenio = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F40", "Erro ao excluir o convênio")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F40", "Convênio não encontrado")
	}
	return resposta(c, 200, "S40", fiber.Map{"message": "Convênio excluído com sucesso"})
}

// ObterConvenioPorID existe para o fluxo do site que valida a carteira
// antes de criar o cliente.
func ObterConvenioPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F40", "ID de convênio inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F40")
	}

	var co models.Convenio
	err = db.QueryRow(c.Context(),
		`SELECT id_convenio, nome FROM convenios WHERE id_convenio = $1`, id).
		Scan(&co.IDConvenio, &co.Nome)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F40", "Convênio não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F40", "Erro ao buscar o convênio")
	}
	return resposta(c, 200, "S40", co)
}
