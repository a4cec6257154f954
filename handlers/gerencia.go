package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/dualmtech/dualm-api/models"
)

// SalvarGerenciaAgenda faz upsert da política do par especialista e
// convênio: máximo de consultas por dia e antecedência mínima em dias.
func SalvarGerenciaAgenda(c *fiber.Ctx) error {
	var req models.GerenciaAgendaRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F70", "Dados inválidos")
	}
	if req.IDEspecialista == 0 || req.IDConvenio == 0 {
		return respostaErro(c, 400, "F70", "Especialista e convênio são obrigatórios")
	}
	if req.MaxConsulta < 0 || req.Antecedencia < 0 {
		return respostaErro(c, 400, "F70", "Limites não podem ser negativos")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F70")
	}

	var id int
	err := db.QueryRow(c.Context(), `
		INSERT INTO gerencia_agenda (id_especialista, id_convenio, max_consulta, antecedencia)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id_especialista, id_convenio)
		DO UPDATE SET max_consulta = EXCLUDED.max_consulta, antecedencia = EXCLUDED.antecedencia
		RETURNING id_gerencia`,
		req.IDEspecialista, req.IDConvenio, req.MaxConsulta, req.Antecedencia).Scan(&id)
	if err != nil {
		return respostaErro(c, 500, "F70", "Erro ao salvar a política da agenda")
	}
	return resposta(c, 200, "S70", fiber.Map{"id_gerencia": id, "message": "Política da agenda salva com sucesso"})
}

// ListarGerenciaAgenda lista as políticas, com filtro opcional por
// especialista.
func ListarGerenciaAgenda(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F70")
	}

	consulta := `
		SELECT g.id_gerencia, g.id_especialista, g.id_convenio,
		       g.max_consulta, g.antecedencia, e.nome, co.nome
		FROM gerencia_agenda g
		JOIN especialistas e ON e.id_especialista = g.id_especialista
		JOIN convenios co ON co.id_convenio = g.id_convenio`
	args := []any{}
	if esp := c.Query("id_especialista"); esp != "" {
		id, err := strconv.Atoi(esp)
		if err != nil {
			return respostaErro(c, 400, "F70", "id_especialista inválido")
		}
		consulta += ` WHERE g.id_especialista = $1`
		args = append(args, id)
	}
	consulta += " ORDER BY e.nome, co.nome"

	rows, err := db.Query(c.Context(), consulta, args...)
	if err != nil {
		return respostaErro(c, 500, "F70", "Erro ao listar políticas da agenda")
	}
	defer rows.Close()

	politicas := []models.GerenciaAgenda{}
	for rows.Next() {
		var g models.GerenciaAgenda
		if err := rows.Scan(&g.IDGerencia, &g.IDEspecialista, &g.IDConvenio,
			&g.MaxConsulta, &g.Antecedencia, &g.NomeEspecialista, &g.NomeConvenio); err != nil {
			return respostaErro(c, 500, "F70", "Erro ao ler políticas da agenda")
		}
		politicas = append(politicas, g)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F70", "Erro ao listar políticas da agenda")
	}
	return resposta(c, 200, "S70", fiber.Map{"gerencia": politicas, "total": len(politicas)})
}

func ExcluirGerenciaAgenda(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F70", "ID de política inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F70")
	}

	tag, err := db.Exec(c.Context(),
		`DELETE FROM gerencia_agenda WHERE id_gerencia = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F70", "Erro ao excluir a política da agenda")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F70", "Política não encontrada")
	}
	return resposta(c, 200, "S70", fiber.Map{"message": "Política excluída com sucesso"})
}
