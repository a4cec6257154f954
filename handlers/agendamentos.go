package handlers

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dualmtech/dualm-api/agenda"
	"github.com/dualmtech/dualm-api/middleware"
	"github.com/dualmtech/dualm-api/models"
)

// CriarAgendamento recebe o pedido do site, roda o motor de admissão e
// grava quando todos os portões passam.
func CriarAgendamento(c *fiber.Ctx) error {
	var req models.CriarAgendamentoRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F20", "Dados inválidos")
	}
	return executarAgendamento(c, req)
}

// CriarAgendamentoN8N é o canal de máquina usado pelos fluxos do n8n. A
// autenticação Basic fica na rota; o cliente chega identificado por CPF.
func CriarAgendamentoN8N(c *fiber.Ctx) error {
	var req struct {
		CPF            string `json:"cpf"`
		IDEspecialista int    `json:"id_especialista"`
		Data           string `json:"data"`
		Horario        string `json:"horario"`
		IgnorarLimite  bool   `json:"ignorar_limite"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F20", "Dados inválidos")
	}
	if req.CPF == "" {
		return respostaErro(c, 400, "F20", "O CPF do cliente é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F20")
	}

	var idCliente int
	err := db.QueryRow(c.Context(),
		`SELECT id_cliente FROM clientes WHERE cpf = $1`, req.CPF).Scan(&idCliente)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F20", "Cliente não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F20", "Erro ao buscar o cliente")
	}

	return executarAgendamento(c, models.CriarAgendamentoRequest{
		IDCliente:      idCliente,
		IDEspecialista: req.IDEspecialista,
		Data:           req.Data,
		Horario:        req.Horario,
		IgnorarLimite:  req.IgnorarLimite,
	})
}

func executarAgendamento(c *fiber.Ctx, req models.CriarAgendamentoRequest) error {
	if req.IDCliente == 0 {
		return respostaErro(c, 400, "F20", "O ID do cliente é obrigatório")
	}
	if req.IDEspecialista == 0 {
		return respostaErro(c, 400, "F20", "O ID do especialista é obrigatório")
	}
	data, err := time.Parse("2006-01-02", req.Data)
	if err != nil {
		return respostaErro(c, 400, "F20", "Data inválida, use o formato AAAA-MM-DD")
	}
	horario, err := agenda.ParseHora(req.Horario)
	if err != nil {
		return respostaErro(c, 400, "F20", "Horário inválido, use o formato HH:MM")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F20")
	}

	motor := agenda.NovoMotor(agenda.NovoRepositorioPG(db))
	resultado := motor.Agendar(c.Context(), agenda.Pedido{
		IDCliente:      req.IDCliente,
		IDEspecialista: req.IDEspecialista,
		Data:           data,
		Horario:        horario,
		IgnorarLimite:  req.IgnorarLimite,
	})

	if resultado.Aceito {
		// Só audita quando o limite foi de fato estourado; ignorar_limite
		// em um pedido dentro da cota não tem efeito nenhum.
		if resultado.Aviso != "" {
			auditarOverride(c, req, resultado.IDAgendamento)
		}
		return resposta(c, 201, "S20", resultado)
	}
	return resposta(c, statusDoMotivo(resultado.Motivo), "F20", resultado)
}

// auditarOverride registra quem forçou um agendamento acima do limite
// diário do convênio.
func auditarOverride(c *fiber.Ctx, req models.CriarAgendamentoRequest, idAgendamento int) {
	pool, ok := c.Locals("db").(*pgxpool.Pool)
	if !ok {
		return
	}
	email, _ := c.Locals("email_usuario").(string)
	nivel, _ := c.Locals("nivel").(string)
	middleware.RegistrarEvento(pool, email, nivel,
		"agendamento acima do limite do convênio", map[string]interface{}{
			"id_agendamento":  idAgendamento,
			"id_cliente":      req.IDCliente,
			"id_especialista": req.IDEspecialista,
			"data":            req.Data,
			"horario":         req.Horario,
		})
}

func statusDoMotivo(motivo string) int {
	switch motivo {
	case agenda.MotivoClienteInexistente, agenda.MotivoEspecialistaInexistente:
		return 404
	case agenda.MotivoPersistencia:
		return 500
	default:
		return 409
	}
}

// ListarAgendamentos devolve a agenda do tenant com os nomes já
// resolvidos. Aceita filtros por data e por especialista.
func ListarAgendamentos(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F20")
	}

	consulta := `
		SELECT a.id_agendamento, a.id_cliente, a.id_especialista,
		       to_char(a.data, 'YYYY-MM-DD'), to_char(a.horario, 'HH24:MI'),
		       a.duracao, a.id_convenio, a.aviso,
		       cl.nome, e.nome, co.nome,
		       to_char(a.criado_em, 'YYYY-MM-DD HH24:MI:SS')
		FROM agendamentos a
		JOIN clientes cl ON cl.id_cliente = a.id_cliente
		JOIN especialistas e ON e.id_especialista = a.id_especialista
		LEFT JOIN convenios co ON co.id_convenio = a.id_convenio
		WHERE 1=1`
	args := []any{}

	if data := c.Query("data"); data != "" {
		args = append(args, data)
		consulta += fmt.Sprintf(" AND a.data = $%d", len(args))
	}
	if esp := c.Query("id_especialista"); esp != "" {
		id, err := strconv.Atoi(esp)
		if err != nil {
			return respostaErro(c, 400, "F20", "id_especialista inválido")
		}
		args = append(args, id)
		consulta += fmt.Sprintf(" AND a.id_especialista = $%d", len(args))
	}
	consulta += " ORDER BY a.data, a.horario"

	rows, err := db.Query(c.Context(), consulta, args...)
	if err != nil {
		return respostaErro(c, 500, "F20", "Erro ao listar agendamentos")
	}
	defer rows.Close()

	agendamentos := []models.Agendamento{}
	for rows.Next() {
		var a models.Agendamento
		if err := rows.Scan(&a.IDAgendamento, &a.IDCliente, &a.IDEspecialista,
			&a.Data, &a.Horario, &a.Duracao, &a.IDConvenio, &a.Aviso,
			&a.NomeCliente, &a.NomeEspecialista, &a.NomeConvenio, &a.CriadoEm); err != nil {
			return respostaErro(c, 500, "F20", "Erro ao ler agendamentos")
		}
		agendamentos = append(agendamentos, a)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F20", "Erro ao listar agendamentos")
	}
	return resposta(c, 200, "S20", fiber.Map{"agendamentos": agendamentos, "total": len(agendamentos)})
}

// AtualizarAgendamento troca data, horário ou especialista de um
// agendamento existente. Com REVALIDAR_ATUALIZACAO ligado o novo horário
// passa pelos mesmos portões da criação, ignorando o próprio registro
// nas checagens de conflito.
func AtualizarAgendamento(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F20", "ID de agendamento inválido")
	}

	var req models.AtualizarAgendamentoRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F20", "Dados inválidos")
	}
	if req.Data == nil && req.Horario == nil && req.IDEspecialista == nil {
		return respostaErro(c, 400, "F20", "Nenhum campo para atualizar")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F20")
	}

	var atual struct {
		idCliente      int
		idEspecialista int
		data           string
		horario        string
	}
	err = db.QueryRow(c.Context(), `
		SELECT id_cliente, id_especialista, to_char(data, 'YYYY-MM-DD'), to_char(horario, 'HH24:MI')
		FROM agendamentos WHERE id_agendamento = $1`, id).
		Scan(&atual.idCliente, &atual.idEspecialista, &atual.data, &atual.horario)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F20", "Agendamento não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F20", "Erro ao buscar o agendamento")
	}

	novaDataStr := atual.data
	if req.Data != nil {
		novaDataStr = *req.Data
	}
	novoHorarioStr := atual.horario
	if req.Horario != nil {
		novoHorarioStr = *req.Horario
	}
	novoEspecialista := atual.idEspecialista
	if req.IDEspecialista != nil {
		novoEspecialista = *req.IDEspecialista
	}

	novaData, err := time.Parse("2006-01-02", novaDataStr)
	if err != nil {
		return respostaErro(c, 400, "F20", "Data inválida, use o formato AAAA-MM-DD")
	}
	novoHorario, err := agenda.ParseHora(novoHorarioStr)
	if err != nil {
		return respostaErro(c, 400, "F20", "Horário inválido, use o formato HH:MM")
	}

	if revalidarAtualizacao() {
		repo := agenda.NovoRepositorioPG(db).Excluindo(id)
		resultado := agenda.NovoMotor(repo).Validar(c.Context(), agenda.Pedido{
			IDCliente:      atual.idCliente,
			IDEspecialista: novoEspecialista,
			Data:           novaData,
			Horario:        novoHorario,
		})
		if !resultado.Aceito {
			return resposta(c, statusDoMotivo(resultado.Motivo), "F20", resultado)
		}
	}

	tag, err := db.Exec(c.Context(), `
		UPDATE agendamentos
		SET id_especialista = $1, data = $2, horario = $3::time
		WHERE id_agendamento = $4`,
		novoEspecialista, novaData, novoHorario.String(), id)
	if err != nil {
		return respostaErro(c, 500, "F20", "Erro ao atualizar o agendamento")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F20", "Agendamento não encontrado")
	}
	return resposta(c, 200, "S20", fiber.Map{"message": "Agendamento atualizado com sucesso"})
}

// ExcluirAgendamento remove o agendamento; cancelamento não passa pelos
// portões de admissão.
func ExcluirAgendamento(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F20", "ID de agendamento inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F20")
	}

	tag, err := db.Exec(c.Context(),
		`DELETE FROM agendamentos WHERE id_agendamento = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F20", "Erro ao excluir o agendamento")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F20", "Agendamento não encontrado")
	}
	return resposta(c, 200, "S20", fiber.Map{"message": "Agendamento excluído com sucesso"})
}

func revalidarAtualizacao() bool {
	v := os.Getenv("REVALIDAR_ATUALIZACAO")
	return v == "1" || v == "true"
}
