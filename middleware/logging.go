package middleware

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoggingMiddleware registra cada request na tabela logs do tenant, de
// forma assíncrona para não segurar a resposta.
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		inicio := time.Now()
		err := c.Next()
		duracao := int(time.Since(inicio).Milliseconds())

		pool, ok := c.Locals("db").(*pgxpool.Pool)
		if !ok {
			// Sem tenant resolvido não há onde registrar.
			return err
		}

		entrada := criarEntrada(c, duracao)
		go gravarLog(pool, entrada)
		return err
	}
}

type entradaLog struct {
	metodo    string
	caminho   string
	status    int
	duracaoMS int
	ip        string
	userAgent string
	email     string
	nivel     string
	corpo     string
	nivelLog  string
}

func criarEntrada(c *fiber.Ctx, duracaoMS int) entradaLog {
	entrada := entradaLog{
		metodo:    c.Method(),
		caminho:   c.Path(),
		status:    c.Response().StatusCode(),
		duracaoMS: duracaoMS,
		ip:        ipReal(c),
		userAgent: c.Get("User-Agent"),
		nivelLog:  nivelPorStatus(c.Response().StatusCode()),
	}

	if email, ok := c.Locals("email_usuario").(string); ok {
		entrada.email = email
	}
	if nivel, ok := c.Locals("nivel").(string); ok {
		entrada.nivel = nivel
	}

	if c.Method() == "POST" || c.Method() == "PUT" || c.Method() == "PATCH" {
		entrada.corpo = filtrarCorpo(string(c.Body()))
	}
	return entrada
}

func ipReal(c *fiber.Ctx) string {
	if encaminhado := c.Get("X-Forwarded-For"); encaminhado != "" {
		return strings.TrimSpace(strings.Split(encaminhado, ",")[0])
	}
	if real := c.Get("X-Real-IP"); real != "" {
		return real
	}
	return c.IP()
}

// filtrarCorpo mascara campos sensíveis antes de persistir e trunca
// corpos longos.
func filtrarCorpo(corpo string) string {
	const limite = 1000
	sensiveis := []string{"senha", "senha_nova", "password", "codigo_mfa", "secret", "token"}

	var dados map[string]interface{}
	if err := json.Unmarshal([]byte(corpo), &dados); err != nil {
		if len(corpo) > limite {
			return corpo[:limite] + "...[truncado]"
		}
		return corpo
	}
	for _, campo := range sensiveis {
		if _, existe := dados[campo]; existe {
			dados[campo] = "[FILTRADO]"
		}
	}
	filtrado, _ := json.Marshal(dados)
	if len(filtrado) > limite {
		return string(filtrado[:limite]) + "...[truncado]"
	}
	return string(filtrado)
}

func nivelPorStatus(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warning"
	default:
		return "info"
	}
}

func gravarLog(pool *pgxpool.Pool, entrada entradaLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
		INSERT INTO logs (metodo, caminho, status, duracao_ms, ip, user_agent, email, nivel, corpo, nivel_log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entrada.metodo, entrada.caminho, entrada.status, entrada.duracaoMS,
		entrada.ip, entrada.userAgent, entrada.email, entrada.nivel,
		entrada.corpo, entrada.nivelLog)
	if err != nil {
		log.Printf("Erro ao gravar log no banco: %v", err)
	}
}

// RegistrarEvento grava um evento de auditoria fora do ciclo de request,
// como o uso do ignorar_limite em um agendamento.
func RegistrarEvento(pool *pgxpool.Pool, email, nivel, mensagem string, dados map[string]interface{}) {
	entrada := entradaLog{
		metodo:   "EVENTO",
		caminho:  "/auditoria",
		status:   200,
		ip:       "127.0.0.1",
		email:    email,
		nivel:    nivel,
		nivelLog: "audit",
	}
	if dados == nil {
		dados = map[string]interface{}{}
	}
	dados["mensagem"] = mensagem
	corpo, _ := json.Marshal(dados)
	entrada.corpo = string(corpo)

	go gravarLog(pool, entrada)
}
