package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/dualmtech/dualm-api/cache"
	"github.com/dualmtech/dualm-api/database"
	"github.com/dualmtech/dualm-api/handlers"
	"github.com/dualmtech/dualm-api/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: não foi possível carregar o arquivo .env")
	}

	database.ConnectRegistro()
	defer database.CloseDB()

	// Redis é opcional em desenvolvimento; sem ele a resolução de
	// domínio vai direto ao registro e o código de redefinição sai no
	// log do processo.
	if endereco := os.Getenv("REDIS_ADDR"); endereco != "" {
		store, err := cache.NovoRedisStore(endereco, os.Getenv("REDIS_PASSWORD"), 0)
		if err != nil {
			log.Fatalf("Erro ao conectar ao Redis: %v", err)
		}
		defer store.Fechar()
		database.UsarCacheDominio(store)
		handlers.CacheRedefinicao = store
		log.Println("Cache Redis conectado em", endereco)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
		AppName: "Dualm API v1.0.0",
	})

	routes.SetupRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error":   "Rota não encontrada",
			"message": "A rota solicitada não existe neste servidor",
			"path":    c.Path(),
			"method":  c.Method(),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Printf("Dualm API iniciada na porta %s", port)
	log.Fatal(app.Listen(":" + port))
}
