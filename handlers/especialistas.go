package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dualmtech/dualm-api/models"
)

// CriarEspecialista cadastra o especialista e os vínculos de convênio e
// especialidade em uma transação só.
func CriarEspecialista(c *fiber.Ctx) error {
	var req models.CriarEspecialistaRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F30", "Dados inválidos")
	}
	if req.Nome == "" {
		return respostaErro(c, 400, "F30", "O nome do especialista é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F30")
	}

	tx, err := db.Begin(c.Context())
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao cadastrar o especialista")
	}
	defer tx.Rollback(c.Context())

	var grade any
	if len(req.HorarioAtendimento) > 0 {
		grade = string(req.HorarioAtendimento)
	}

	var id int
	err = tx.QueryRow(c.Context(), `
		INSERT INTO especialistas (nome, registro, aceita_convenio, tempo_consulta, horario_atendimento)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_especialista`,
		req.Nome, req.Registro, req.AceitaConvenio, req.TempoConsulta, grade).Scan(&id)
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao cadastrar o especialista")
	}

	if err := vincular(c.Context(), tx, "especialista_convenios", "id_convenio", id, req.Convenios); err != nil {
		return respostaErro(c, 500, "F30", "Erro ao vincular convênios")
	}
	if err := vincular(c.Context(), tx, "especialista_especialidades", "id_especialidade", id, req.Especialidades); err != nil {
		return respostaErro(c, 500, "F30", "Erro ao vincular especialidades")
	}

	if err := tx.Commit(c.Context()); err != nil {
		return respostaErro(c, 500, "F30", "Erro ao cadastrar o especialista")
	}
	return resposta(c, 201, "S30", fiber.Map{"id_especialista": id, "message": "Especialista cadastrado com sucesso"})
}

func vincular(ctx context.Context, tx pgx.Tx, tabela, coluna string, idEspecialista int, ids []int) error {
	for _, id := range ids {
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+tabela+` (id_especialista, `+coluna+`) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			idEspecialista, id); err != nil {
			return err
		}
	}
	return nil
}

// ListarEspecialistas devolve todos os especialistas com os vínculos
// agregados.
func ListarEspecialistas(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F30")
	}

	rows, err := db.Query(c.Context(), `
		SELECT e.id_especialista, e.nome, e.registro, e.aceita_convenio,
		       COALESCE(e.tempo_consulta, 0),
		       COALESCE(e.horario_atendimento::text, ''),
		       COALESCE((SELECT array_agg(ec.id_convenio) FROM especialista_convenios ec
		                 WHERE ec.id_especialista = e.id_especialista), '{}'),
		       COALESCE((SELECT array_agg(ee.id_especialidade) FROM especialista_especialidades ee
		                 WHERE ee.id_especialista = e.id_especialista), '{}')
		FROM especialistas e
		ORDER BY e.nome`)
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao listar especialistas")
	}
	defer rows.Close()

	especialistas := []models.Especialista{}
	for rows.Next() {
		var e models.Especialista
		var grade string
		if err := rows.Scan(&e.IDEspecialista, &e.Nome, &e.Registro, &e.AceitaConvenio,
			&e.TempoConsulta, &grade, &e.Convenios, &e.Especialidades); err != nil {
			return respostaErro(c, 500, "F30", "Erro ao ler especialistas")
		}
		if grade != "" {
			e.HorarioAtendimento = []byte(grade)
		}
		especialistas = append(especialistas, e)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F30", "Erro ao listar especialistas")
	}
	return resposta(c, 200, "S30", fiber.Map{"especialistas": especialistas, "total": len(especialistas)})
}

// ObterEspecialistaPorID devolve um especialista com os vínculos.
func ObterEspecialistaPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F30", "ID de especialista inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F30")
	}

	var e models.Especialista
	var grade string
	err = db.QueryRow(c.Context(), `
		SELECT e.id_especialista, e.nome, e.registro, e.aceita_convenio,
		       COALESCE(e.tempo_consulta, 0),
		       COALESCE(e.horario_atendimento::text, ''),
		       COALESCE((SELECT array_agg(ec.id_convenio) FROM especialista_convenios ec
		                 WHERE ec.id_especialista = e.id_especialista), '{}'),
		       COALESCE((SELECT array_agg(ee.id_especialidade) FROM especialista_especialidades ee
		                 WHERE ee.id_especialista = e.id_especialista), '{}')
		FROM especialistas e
		WHERE e.id_especialista = $1`, id).
		Scan(&e.IDEspecialista, &e.Nome, &e.Registro, &e.AceitaConvenio,
			&e.TempoConsulta, &grade, &e.Convenios, &e.Especialidades)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F30", "Especialista não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao buscar o especialista")
	}
	if grade != "" {
		e.HorarioAtendimento = []byte(grade)
	}
	return resposta(c, 200, "S30", e)
}

// AtualizarEspecialista altera os campos presentes no corpo; listas de
// vínculo, quando enviadas, substituem as anteriores.
func AtualizarEspecialista(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F30", "ID de especialista inválido")
	}

	var req models.AtualizarEspecialistaRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F30", "Dados inválidos")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F30")
	}

	tx, err := db.Begin(c.Context())
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao atualizar o especialista")
	}
	defer tx.Rollback(c.Context())

	var grade any
	if len(req.HorarioAtendimento) > 0 {
		grade = string(req.HorarioAtendimento)
	}

	tag, err := tx.Exec(c.Context(), `
		UPDATE especialistas
		SET nome = COALESCE($1, nome),
		    registro = COALESCE($2, registro),
		    aceita_convenio = COALESCE($3, aceita_convenio),
		    tempo_consulta = COALESCE($4, tempo_consulta),
		    horario_atendimento = COALESCE($5::jsonb, horario_atendimento)
		WHERE id_especialista = $6`,
		req.Nome, req.Registro, req.AceitaConvenio, req.TempoConsulta, grade, id)
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao atualizar o especialista")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F30", "Especialista não encontrado")
	}

	if req.Convenios != nil {
		if _, err := tx.Exec(c.Context(),
			`DELETE FROM especialista_convenios WHERE id_especialista = $1`, id); err != nil {
			return respostaErro(c, 500, "F30", "Erro ao atualizar convênios")
		}
		if err := vincular(c.Context(), tx, "especialista_convenios", "id_convenio", id, req.Convenios); err != nil {
			return respostaErro(c, 500, "F30", "Erro ao atualizar convênios")
		}
	}
	if req.Especialidades != nil {
		if _, err := tx.Exec(c.Context(),
			`DELETE FROM especialista_especialidades WHERE id_especialista = $1`, id); err != nil {
			return respostaErro(c, 500, "F30", "Erro ao atualizar especialidades")
		}
		if err := vincular(c.Context(), tx, "especialista_especialidades", "id_especialidade", id, req.Especialidades); err != nil {
			return respostaErro(c, 500, "F30", "Erro ao atualizar especialidades")
		}
	}

	if err := tx.Commit(c.Context()); err != nil {
		return respostaErro(c, 500, "F30", "Erro ao atualizar o especialista")
	}
	return resposta(c, 200, "S30", fiber.Map{"message": "Especialista atualizado com sucesso"})
}

// ExcluirEspecialista remove o especialista e os vínculos.
func ExcluirEspecialista(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F30", "ID de especialista inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F30")
	}

	tag, err := db.Exec(c.Context(),
		`DELETE FROM especialistas WHERE id_especialista = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F30", "Erro ao excluir o especialista")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F30", "Especialista não encontrado")
	}
	return resposta(c, 200, "S30", fiber.Map{"message": "Especialista excluído com sucesso"})
}
