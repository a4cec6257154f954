package routes

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dualmtech/dualm-api/handlers"
	"github.com/dualmtech/dualm-api/middleware"
)

// SetupRoutes configura todas as rotas da aplicação.
func SetupRoutes(app *fiber.App) {
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Dominio",
	}))
	app.Use(middleware.DefaultRateLimiter())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Dualm API",
			"version": "1.0.0",
		})
	})

	// Tudo abaixo é por tenant: o domínio vem no header X-Dominio.
	api := app.Group("/api/v1", middleware.TenantMiddleware(), middleware.LoggingMiddleware())

	// === ROTAS PÚBLICAS ===
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/login", handlers.Login)
	auth.Post("/recuperar-senha", handlers.SolicitarRedefinicaoSenha)
	auth.Post("/redefinir-senha", handlers.ConfirmarRedefinicaoSenha)

	// === CANAL DE MÁQUINA (n8n) ===
	n8n := api.Group("/n8n", basicauth.New(basicauth.Config{
		Authorizer: autorizarN8N,
	}), middleware.BodySizeLimit(64<<10))
	n8n.Post("/agendamentos", handlers.CriarAgendamentoN8N)

	// === ROTAS PROTEGIDAS ===
	protected := api.Group("/", middleware.JWTMiddleware())

	agendamentos := protected.Group("/agendamentos")
	agendamentos.Post("/", middleware.BodySizeLimit(64<<10), handlers.CriarAgendamento)
	agendamentos.Get("/", handlers.ListarAgendamentos)
	agendamentos.Put("/:id", handlers.AtualizarAgendamento)
	agendamentos.Delete("/:id", handlers.ExcluirAgendamento)

	usuarios := protected.Group("/usuarios")
	usuarios.Get("/perfil", handlers.ObterPerfil)
	usuarios.Get("/", middleware.RequireNivel("admin"), handlers.ListarUsuarios)
	usuarios.Post("/", middleware.RequireNivel("admin"), handlers.CriarUsuario)
	usuarios.Get("/:id", middleware.RequireNivel("admin"), handlers.ObterUsuarioPorID)
	usuarios.Put("/:id", middleware.RequireNivel("admin"), handlers.AtualizarUsuario)
	usuarios.Delete("/:id", middleware.RequireNivel("admin"), handlers.ExcluirUsuario)

	mfa := protected.Group("/mfa")
	mfa.Post("/setup", handlers.ConfigurarMFA)
	mfa.Post("/verify", handlers.VerificarMFA)
	mfa.Post("/disable", handlers.DesativarMFA)

	especialistas := protected.Group("/especialistas")
	especialistas.Get("/", handlers.ListarEspecialistas)
	especialistas.Get("/:id", handlers.ObterEspecialistaPorID)
	especialistas.Post("/", middleware.RequireNivel("admin", "atendente"), handlers.CriarEspecialista)
	especialistas.Put("/:id", middleware.RequireNivel("admin", "atendente"), handlers.AtualizarEspecialista)
	especialistas.Delete("/:id", middleware.RequireNivel("admin"), handlers.ExcluirEspecialista)

	convenios := protected.Group("/convenios")
	convenios.Get("/", handlers.ListarConvenios)
	convenios.Get("/:id", handlers.ObterConvenioPorID)
	convenios.Post("/", middleware.RequireNivel("admin", "atendente"), handlers.CriarConvenio)
	convenios.Put("/:id", middleware.RequireNivel("admin", "atendente"), handlers.AtualizarConvenio)
	convenios.Delete("/:id", middleware.RequireNivel("admin"), handlers.ExcluirConvenio)

	clientes := protected.Group("/clientes")
	clientes.Get("/", handlers.ListarClientes)
	clientes.Get("/:id", handlers.ObterClientePorID)
	clientes.Post("/", handlers.CriarCliente)
	clientes.Put("/:id", handlers.AtualizarCliente)
	clientes.Delete("/:id", middleware.RequireNivel("admin"), handlers.ExcluirCliente)

	especialidades := protected.Group("/especialidades")
	especialidades.Get("/", handlers.ListarEspecialidades)
	especialidades.Post("/", middleware.RequireNivel("admin", "atendente"), handlers.CriarEspecialidade)
	especialidades.Delete("/:id", middleware.RequireNivel("admin"), handlers.ExcluirEspecialidade)

	protected.Get("/niveis", handlers.ListarNiveis)

	empresa := protected.Group("/empresa")
	empresa.Get("/", handlers.ObterEmpresa)
	empresa.Put("/", middleware.RequireNivel("admin"), handlers.AtualizarEmpresa)

	gerencia := protected.Group("/gerencia-agenda", middleware.RequireNivel("admin", "atendente"))
	gerencia.Get("/", handlers.ListarGerenciaAgenda)
	gerencia.Post("/", handlers.SalvarGerenciaAgenda)
	gerencia.Delete("/:id", handlers.ExcluirGerenciaAgenda)
}

// autorizarN8N compara as credenciais Basic com N8N_USER/N8N_PASSWORD.
func autorizarN8N(usuario, senha string) bool {
	esperadoUsuario := os.Getenv("N8N_USER")
	esperadoSenha := os.Getenv("N8N_PASSWORD")
	if esperadoUsuario == "" || esperadoSenha == "" {
		return false
	}
	okUsuario := subtle.ConstantTimeCompare([]byte(usuario), []byte(esperadoUsuario)) == 1
	okSenha := subtle.ConstantTimeCompare([]byte(senha), []byte(esperadoSenha)) == 1
	return okUsuario && okSenha
}
