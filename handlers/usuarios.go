package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dualmtech/dualm-api/models"
)

// CriarUsuario cadastra um usuário interno da clínica com a senha já em
// hash bcrypt.
func CriarUsuario(c *fiber.Ctx) error {
	var req models.CriarUsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F10", "Dados inválidos")
	}
	if req.Nome == "" || req.Email == "" {
		return respostaErro(c, 400, "F10", "Nome e email são obrigatórios")
	}
	if len(req.Senha) < 8 {
		return respostaErro(c, 400, "F10", "A senha deve ter pelo menos 8 caracteres")
	}
	if req.IDNivel == 0 {
		return respostaErro(c, 400, "F10", "O nível de acesso é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao processar a senha")
	}

	var id int
	err = db.QueryRow(c.Context(), `
		INSERT INTO usuarios (nome, email, senha, id_nivel)
		VALUES ($1, $2, $3, $4)
		RETURNING id_usuario`,
		req.Nome, req.Email, string(hash), req.IDNivel).Scan(&id)
	if ehViolacaoUnica(err) {
		return respostaErro(c, 409, "F10", "Já existe usuário com este email")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao cadastrar o usuário")
	}
	return resposta(c, 201, "S10", fiber.Map{"id_usuario": id, "message": "Usuário cadastrado com sucesso"})
}

func ListarUsuarios(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	rows, err := db.Query(c.Context(), `
		SELECT u.id_usuario, u.nome, u.email, u.id_nivel, n.nome, u.mfa_ativo
		FROM usuarios u
		JOIN niveis n ON n.id_nivel = u.id_nivel
		ORDER BY u.nome`)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao listar usuários")
	}
	defer rows.Close()

	usuarios := []models.Usuario{}
	for rows.Next() {
		var u models.Usuario
		if err := rows.Scan(&u.IDUsuario, &u.Nome, &u.Email, &u.IDNivel, &u.Nivel, &u.MFAAtivo); err != nil {
			return respostaErro(c, 500, "F10", "Erro ao ler usuários")
		}
		usuarios = append(usuarios, u)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F10", "Erro ao listar usuários")
	}
	return resposta(c, 200, "S10", fiber.Map{"usuarios": usuarios, "total": len(usuarios)})
}

func buscarUsuario(c *fiber.Ctx, db Banco, id int) (models.Usuario, error) {
	var u models.Usuario
	err := db.QueryRow(c.Context(), `
		SELECT u.id_usuario, u.nome, u.email, u.id_nivel, n.nome, u.mfa_ativo
		FROM usuarios u
		JOIN niveis n ON n.id_nivel = u.id_nivel
		WHERE u.id_usuario = $1`, id).
		Scan(&u.IDUsuario, &u.Nome, &u.Email, &u.IDNivel, &u.Nivel, &u.MFAAtivo)
	return u, err
}

func ObterUsuarioPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F10", "ID de usuário inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	u, err := buscarUsuario(c, db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao buscar o usuário")
	}
	return resposta(c, 200, "S10", u)
}

// ObterPerfil devolve o usuário autenticado no token.
func ObterPerfil(c *fiber.Ctx) error {
	id, ok := c.Locals("id_usuario").(int)
	if !ok {
		return respostaErro(c, 401, "F10", "Usuário não autenticado")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	u, err := buscarUsuario(c, db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao buscar o perfil")
	}
	return resposta(c, 200, "S10", u)
}

func AtualizarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F10", "ID de usuário inválido")
	}

	var req models.AtualizarUsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F10", "Dados inválidos")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	var hash *string
	if req.Senha != nil {
		if len(*req.Senha) < 8 {
			return respostaErro(c, 400, "F10", "A senha deve ter pelo menos 8 caracteres")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*req.Senha), bcrypt.DefaultCost)
		if err != nil {
			return respostaErro(c, 500, "F10", "Erro ao processar a senha")
		}
		hs := string(h)
		hash = &hs
	}

	tag, err := db.Exec(c.Context(), `
		UPDATE usuarios
		SET nome = COALESCE($1, nome),
		    email = COALESCE($2, email),
		    senha = COALESCE($3, senha),
		    id_nivel = COALESCE($4, id_nivel)
		WHERE id_usuario = $5`,
		req.Nome, req.Email, hash, req.IDNivel, id)
	if ehViolacaoUnica(err) {
		return respostaErro(c, 409, "F10", "Já existe usuário com este email")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao atualizar o usuário")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}
	return resposta(c, 200, "S10", fiber.Map{"message": "Usuário atualizado com sucesso"})
}

func ExcluirUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respostaErro(c, 400, "F10", "ID de usuário inválido")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	tag, err := db.Exec(c.Context(), `DELETE FROM usuarios WHERE id_usuario = $1`, id)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao excluir o usuário")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}
	return resposta(c, 200, "S10", fiber.Map{"message": "Usuário excluído com sucesso"})
}
