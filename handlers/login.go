package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/dualmtech/dualm-api/cache"
	"github.com/dualmtech/dualm-api/middleware"
	"github.com/dualmtech/dualm-api/models"
)

// EnviadorEmail é a fronteira com o serviço de email; a entrega em si
// acontece fora da API.
type EnviadorEmail interface {
	Enviar(para, assunto, corpo string) error
}

// Enviador e CacheRedefinicao são configurados no main. Sem enviador o
// código de redefinição vai para o log do processo (modo dev).
var (
	Enviador         EnviadorEmail
	CacheRedefinicao cache.Store
)

const validadeRedefinicao = 15 * time.Minute

// Login autentica por email e senha; contas com MFA ativo exigem também
// o código TOTP no mesmo request.
func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F10", "Dados inválidos")
	}
	if req.Email == "" || req.Senha == "" {
		return respostaErro(c, 400, "F10", "Email e senha são obrigatórios")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	var (
		id        int
		nome      string
		hash      string
		nivel     string
		mfaAtivo  bool
		mfaSecret *string
	)
	err := db.QueryRow(c.Context(), `
		SELECT u.id_usuario, u.nome, u.senha, n.nome, u.mfa_ativo, u.mfa_secret
		FROM usuarios u
		JOIN niveis n ON n.id_nivel = u.id_nivel
		WHERE u.email = $1`, req.Email).
		Scan(&id, &nome, &hash, &nivel, &mfaAtivo, &mfaSecret)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 401, "F10", "Credenciais inválidas")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao autenticar")
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Senha)) != nil {
		return respostaErro(c, 401, "F10", "Credenciais inválidas")
	}

	if mfaAtivo {
		if mfaSecret == nil {
			return respostaErro(c, 500, "F10", "Configuração de MFA inconsistente")
		}
		if req.CodigoMFA == "" {
			return resposta(c, 401, "F10", fiber.Map{
				"error":       "Código MFA requerido",
				"mfa_required": true,
			})
		}
		if !totp.Validate(req.CodigoMFA, *mfaSecret) {
			return respostaErro(c, 401, "F10", "Código MFA inválido")
		}
	}

	dominio, _ := c.Locals("dominio").(string)
	token, err := middleware.GerarJWT(id, req.Email, nivel, dominio)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao gerar o token")
	}

	return resposta(c, 200, "S10", fiber.Map{
		"token": token,
		"usuario": models.Usuario{
			IDUsuario: id,
			Nome:      nome,
			Email:     req.Email,
			Nivel:     nivel,
			MFAAtivo:  mfaAtivo,
		},
	})
}

func chaveRedefinicao(dominio, email string) string {
	return "reset:" + dominio + ":" + email
}

// SolicitarRedefinicaoSenha gera um código de uso único com validade de
// 15 minutos. A resposta é a mesma existindo ou não a conta.
func SolicitarRedefinicaoSenha(c *fiber.Ctx) error {
	var req models.RedefinicaoRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return respostaErro(c, 400, "F10", "Email é obrigatório")
	}
	if CacheRedefinicao == nil {
		return respostaErro(c, 503, "F10", "Redefinição de senha indisponível")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	neutra := fiber.Map{"message": "Se o email estiver cadastrado, o código foi enviado"}

	var id int
	err := db.QueryRow(c.Context(),
		`SELECT id_usuario FROM usuarios WHERE email = $1`, req.Email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return resposta(c, 200, "S10", neutra)
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao processar a solicitação")
	}

	dominio, _ := c.Locals("dominio").(string)
	codigo := uuid.NewString()
	if err := CacheRedefinicao.Definir(c.Context(), chaveRedefinicao(dominio, req.Email), codigo, validadeRedefinicao); err != nil {
		return respostaErro(c, 500, "F10", "Erro ao processar a solicitação")
	}

	if Enviador != nil {
		corpo := "Seu código de redefinição de senha: " + codigo +
			"\nO código vale por 15 minutos."
		if err := Enviador.Enviar(req.Email, "Redefinição de senha", corpo); err != nil {
			log.Printf("Erro ao enviar email de redefinição: %v", err)
			return respostaErro(c, 500, "F10", "Erro ao enviar o email")
		}
	} else {
		log.Printf("Código de redefinição para %s: %s", req.Email, codigo)
	}

	return resposta(c, 200, "S10", neutra)
}

// ConfirmarRedefinicaoSenha troca a senha mediante o código recebido por
// email. O código é invalidado no primeiro uso.
func ConfirmarRedefinicaoSenha(c *fiber.Ctx) error {
	var req models.ConfirmarRedefinicaoRequest
	if err := c.BodyParser(&req); err != nil {
		return respostaErro(c, 400, "F10", "Dados inválidos")
	}
	if req.Email == "" || req.Codigo == "" {
		return respostaErro(c, 400, "F10", "Email e código são obrigatórios")
	}
	if len(req.SenhaNova) < 8 {
		return respostaErro(c, 400, "F10", "A senha deve ter pelo menos 8 caracteres")
	}
	if CacheRedefinicao == nil {
		return respostaErro(c, 503, "F10", "Redefinição de senha indisponível")
	}

	dominio, _ := c.Locals("dominio").(string)
	chave := chaveRedefinicao(dominio, req.Email)
	codigo, err := CacheRedefinicao.Obter(c.Context(), chave)
	if errors.Is(err, cache.ErrNaoEncontrado) || (err == nil && codigo != req.Codigo) {
		return respostaErro(c, 401, "F10", "Código inválido ou expirado")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao validar o código")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.SenhaNova), bcrypt.DefaultCost)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao processar a senha")
	}

	tag, err := db.Exec(c.Context(),
		`UPDATE usuarios SET senha = $1 WHERE email = $2`, string(hash), req.Email)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao atualizar a senha")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}

	if err := CacheRedefinicao.Apagar(c.Context(), chave); err != nil {
		log.Printf("Erro ao invalidar código de redefinição: %v", err)
	}
	return resposta(c, 200, "S10", fiber.Map{"message": "Senha redefinida com sucesso"})
}

// ConfigurarMFA gera o segredo TOTP do usuário autenticado. O MFA só
// fica ativo depois do primeiro código válido em VerificarMFA.
func ConfigurarMFA(c *fiber.Ctx) error {
	id, ok := c.Locals("id_usuario").(int)
	if !ok {
		return respostaErro(c, 401, "F10", "Usuário não autenticado")
	}
	email, _ := c.Locals("email_usuario").(string)

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	dominio, _ := c.Locals("dominio").(string)
	if dominio == "" {
		dominio = "dualm"
	}
	chave, err := totp.Generate(totp.GenerateOpts{
		Issuer:      dominio,
		AccountName: email,
	})
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao gerar o segredo MFA")
	}

	tag, err := db.Exec(c.Context(),
		`UPDATE usuarios SET mfa_secret = $1, mfa_ativo = false WHERE id_usuario = $2`,
		chave.Secret(), id)
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao salvar o segredo MFA")
	}
	if tag.RowsAffected() == 0 {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}

	return resposta(c, 200, "S10", fiber.Map{
		"secret":      chave.Secret(),
		"otpauth_url": chave.URL(),
	})
}

// VerificarMFA confirma o primeiro código TOTP e ativa o MFA da conta.
func VerificarMFA(c *fiber.Ctx) error {
	id, ok := c.Locals("id_usuario").(int)
	if !ok {
		return respostaErro(c, 401, "F10", "Usuário não autenticado")
	}

	var req models.VerificarMFARequest
	if err := c.BodyParser(&req); err != nil || req.Codigo == "" {
		return respostaErro(c, 400, "F10", "Código MFA é obrigatório")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	var secret *string
	err := db.QueryRow(c.Context(),
		`SELECT mfa_secret FROM usuarios WHERE id_usuario = $1`, id).Scan(&secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return respostaErro(c, 404, "F10", "Usuário não encontrado")
	}
	if err != nil {
		return respostaErro(c, 500, "F10", "Erro ao buscar o segredo MFA")
	}
	if secret == nil {
		return respostaErro(c, 400, "F10", "MFA não configurado, chame o setup primeiro")
	}

	if !totp.Validate(req.Codigo, *secret) {
		return respostaErro(c, 401, "F10", "Código MFA inválido")
	}

	if _, err := db.Exec(c.Context(),
		`UPDATE usuarios SET mfa_ativo = true WHERE id_usuario = $1`, id); err != nil {
		return respostaErro(c, 500, "F10", "Erro ao ativar o MFA")
	}
	return resposta(c, 200, "S10", fiber.Map{"message": "MFA ativado com sucesso"})
}

// DesativarMFA limpa o segredo e desliga a exigência de código.
func DesativarMFA(c *fiber.Ctx) error {
	id, ok := c.Locals("id_usuario").(int)
	if !ok {
		return respostaErro(c, 401, "F10", "Usuário não autenticado")
	}

	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F10")
	}

	if _, err := db.Exec(c.Context(),
		`UPDATE usuarios SET mfa_secret = NULL, mfa_ativo = false WHERE id_usuario = $1`, id); err != nil {
		return respostaErro(c, 500, "F10", "Erro ao desativar o MFA")
	}
	return resposta(c, 200, "S10", fiber.Map{"message": "MFA desativado com sucesso"})
}
