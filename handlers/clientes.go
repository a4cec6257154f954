package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dualmtech/dualm-api/models"
)

// CriarCliente cadastra um cliente; o convênio é opcional e quando vem
// acompanha o número da carteira.
func CriarCliente(c *fiber.Ctx) error {
	var req models.CriarClienteRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F50", "Dados inválidos")
	}
	if req.Nome == "" {
		return respostaErro(c, 400, "F50", "O nome do cliente é obrigatório")
	}
	if req.CPF == "" {
		return respostaErro(c, 400, "F50", "O CPF do cliente é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F50")
	}

	var id int
	err := db.QueryRow(c.Context(), `
		INSERT INTO clientes (nome, cpf, telefone, email, id_convenio, cpf_carteira)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_cliente`,
		req.Nome, req.CPF, req.Telefone, req.Email, req.IDConvenio, req.CarteiraConvenio).Scan(&id)
	if ehViolacaoUnica(err) {
		return respostaErro(c, 409, "F50", "Já existe cliente com este CPF")
	}
	if err != nil {
		return respostaErro(c, 500, "F50", "Erro ao cadastrar o cliente")
	}
	return resposta(c, 201, "S50", fiber.Map{"id_cliente": id, "message": "Cliente cadastrado com sucesso"})
}

func ehViolacaoUnica(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ListarClientes aceita busca por nome ou CPF via query `busca`.
func ListarClientes(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F50")
	}

	consulta := `
		SELECT cl.id_cliente, cl.nome, cl.cpf, cl.telefone, cl.email,
		       cl.id_convenio, cl.cpf_carteira, co.nome
		FROM clientes cl
		LEFT JOIN convenios co ON co.id_convenio = cl.id_convenio`
	args := []any{}
	if busca := c.Query("busca"); busca != "" {
		consulta += ` WHERE cl.nome ILIKE $1 OR cl.cpf LIKE $1`
		args = append(args, "%"+busca+"%")
	}
	consulta += " ORDER BY cl.nome"

	rows, err := db.Query(c.Context(), consulta, args...)
	if err != nil {
		return respostaErro(c, 500, "F50", "Erro ao listar clientes")
	}
	defer rows.Close()

	clientes := []models.Cliente{}
	for rows.Next() {
		var cl models.Cliente
		if err := rows.Scan(&cl.IDCliente, &cl.Nome, &cl.CPF, &cl.Telefone, &cl.Email,
			&cl.IDConvenio, &cl.CarteiraConvenio, &cl.NomeConvenio); err != nil {
			return respostaErro(c, 500, "F50", "Erro ao ler clientes")
		}
		clientes = append(clientes, cl)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F50", "Erro ao listar clientes")
	}
	return resposta(c, 200, "S50", fiber.Map{"clientes": clientes, "total": len(clientes)})
}

func ObterClientePorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F50", "ID de cliente inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F50")
	}

	var cl models.Cliente
	err = db.QueryRow(c.Context(), `
		SELECT cl.id_cliente, cl.nome, cl.cpf, cl.telefone, cl.email,
		       cl.id_convenio, cl.cpf_carteira, co.nome
		FROM clientes cl
		LEFT JOIN convenios co ON co.id_convenio = cl.id_convenio
		WHERE cl.id_cliente = $1`, id).
		Scan(&cl.IDCliente, &cl.Nome, &cl.CPF, &cl.Telefone, &cl.Email,
			&cl.IDConvenio, &cl.CarteiraConvenio, &cl.NomeConvenio)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F50", "Cliente não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F50", "Erro ao buscar o cliente")
	}
	return resposta(c, 200, "S50", cl)
}

func AtualizarCliente(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F50", "ID de cliente inválido")
	}

	var req models.AtualizarClienteRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F50", "Dados inválidos")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F50")
	}

	tag, err := db.Exec(c.Context(), `
		UPDATE clientes
		SET nome = COALESCE($1, nome),
		    telefone = COALESCE($2, telefone),
		    email = COALESCE($3, email),
		    id_convenio = COALESCE($4, id_convenio),
		    cpf_carteira = COALESCE($5, cpf_carteira)
		WHERE id_cliente = $6`,
		req.Nome, req.Telefone, req.Email, req.IDConvenio, req.CarteiraConvenio, id)
	if err != nil {
		return respostaErro(c, 500, "F50", "Erro ao atualizar o cliente")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F50", "Cliente não encontrado")
	}
	return resposta(c, 200, "S50", fiber.Map{"message": "Cliente atualizado com sucesso"})
}

func ExcluirCliente(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F50", "ID de cliente inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F50")
	}

	tag, err := db.Exec(c.Context(), `DELETE FROM clientes WHERE id_cliente = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F50", "Erro ao excluir o cliente")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F50", "Cliente não encontrado")
	}
	return resposta(c, 200, "S50", fiber.Map{"message": "Cliente excluído com sucesso"})
}
