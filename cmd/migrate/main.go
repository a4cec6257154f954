// Comando de migração: aplica o esquema canônico ao banco de um tenant.
//
//	TENANT_DATABASE_URL=postgres://... go run ./cmd/migrate up
//	TENANT_DATABASE_URL=postgres://... go run ./cmd/migrate down 1
//	TENANT_DATABASE_URL=postgres://... go run ./cmd/migrate force <versão>
package main

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dualmtech/dualm-api/migrations"
)

func main() {
	databaseURL := strings.TrimSpace(os.Getenv("TENANT_DATABASE_URL"))
	if databaseURL == "" {
		databaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if databaseURL == "" {
		log.Fatal("TENANT_DATABASE_URL é obrigatório")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("abrir banco: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("testar conexão: %v", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("driver do banco: %v", err)
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("driver das migrações: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Fatalf("criar migrador: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	comando := "up"
	if len(os.Args) > 1 {
		comando = os.Args[1]
	}

	switch comando {
	case "up":
		err = m.Up()
	case "down":
		passos := 1
		if len(os.Args) > 2 {
			passos, err = strconv.Atoi(os.Args[2])
			if err != nil {
				log.Fatalf("número de passos inválido: %v", err)
			}
		}
		err = m.Steps(-passos)
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("force exige a versão")
		}
		versao, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatalf("versão inválida: %v", convErr)
		}
		err = m.Force(versao)
	default:
		log.Fatalf("comando desconhecido: %s", comando)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("Nada a migrar")
		return
	}
	if err != nil {
		log.Fatalf("migração falhou: %v", err)
	}
	log.Println("Migração aplicada com sucesso")
}
