package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/dualmtech/dualm-api/models"
)

func CriarEspecialidade(c *fiber.Ctx) error {
	var req models.EspecialidadeRequest
	if err := c.BodyParser(&req); err != nil || req.Nome == "" {
		return respostaErro(c, 400, "F31", "O nome da especialidade é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F31")
	}

	var id int
	err := db.QueryRow(c.Context(),
		`INSERT INTO especialidades (nome) VALUES ($1) RETURNING id_especialidade`, req.Nome).Scan(&id)
	if ehViolacaoUnica(err) {
		return respostaErro(c, 409, "F31", "Já existe especialidade com este nome")
	}
	if err != nil {
		return respostaErro(c, 500, "F31", "Erro ao cadastrar a especialidade")
	}
	return resposta(c, 201, "S31", fiber.Map{"id_especialidade": id, "message": "Especialidade cadastrada com sucesso"})
}

func ListarEspecialidades(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F31")
	}

	rows, err := db.Query(c.Context(),
		`SELECT id_especialidade, nome FROM especialidades ORDER BY nome`)
	if err != nil {
		return respostaErro(c, 500, "F31", "Erro ao listar especialidades")
	}
	defer rows.Close()

	especialidades := []models.Especialidade{}
	for rows.Next() {
		var e models.Especialidade
		if err := rows.Scan(&e.IDEspecialidade, &e.Nome); err != nil {
			return respostaErro(c, 500, "F31", "Erro ao ler especialidades")
		}
		especialidades = append(especialidades, e)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F31", "Erro ao listar especialidades")
	}
	return resposta(c, 200, "S31", fiber.Map{"especialidades": especialidades, "total": len(especialidades)})
}

func ExcluirEspecialidade(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F31", "ID de especialidade inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F31")
	}

	tag, err := db.Exec(c.Context(),
		`DELETE FROM especialidades WHERE id_especialidade = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F31", "Erro ao excluir a especialidade")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F31", "Especialidade não encontrada")
	}
	return resposta(c, 200, "S31", fiber.Map{"message": "Especialidade excluída com sucesso"})
}
