package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dualmtech/dualm-api/cache"
)

// ErrEmpresaNaoEncontrada indica domínio sem cadastro no registro central.
var ErrEmpresaNaoEncontrada = errors.New("database: empresa não cadastrada")

// Registro é o pool do banco central, que só conhece a tabela
// empresas_clientes (dominio → host do banco do tenant).
var Registro *pgxpool.Pool

var (
	poolsMu sync.Mutex
	pools   = map[string]*pgxpool.Pool{}

	// cacheDominio evita bater no registro central a cada request.
	cacheDominio    cache.Store
	cacheDominioTTL = 5 * time.Minute
)

// ConnectRegistro abre o pool do registro central a partir de
// DATABASE_URL e confirma a conexão.
func ConnectRegistro() {
	config, err := pgxpool.ParseConfig(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Erro ao parsear DATABASE_URL: %v", err)
	}
	ajustarPool(config)

	Registro, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Erro ao criar o pool do registro central: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var versao string
	if err := Registro.QueryRow(ctx, "SELECT version()").Scan(&versao); err != nil {
		log.Fatalf("Erro ao testar a conexão com o registro central: %v", err)
	}
	log.Println("Conectado ao registro central:", versao)
}

// UsarCacheDominio liga o cache da resolução dominio→host.
func UsarCacheDominio(store cache.Store) {
	cacheDominio = store
}

// ajustarPool aplica a mesma afinação em todos os pools.
func ajustarPool(config *pgxpool.Config) {
	config.MaxConns = 30
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
}

// PoolDoTenant resolve o domínio no registro central e devolve o pool do
// banco daquela empresa, criando e guardando o pool na primeira vez.
func PoolDoTenant(ctx context.Context, dominio string) (*pgxpool.Pool, error) {
	host, err := resolverHost(ctx, dominio)
	if err != nil {
		return nil, err
	}

	poolsMu.Lock()
	defer poolsMu.Unlock()
	if pool, ok := pools[host]; ok {
		return pool, nil
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		host,
		envOu("DB_PORT", "5432"),
		os.Getenv("DB_NAME"))
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("configurar pool do tenant %s: %w", dominio, err)
	}
	ajustarPool(config)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("conectar ao banco do tenant %s: %w", dominio, err)
	}
	pools[host] = pool
	return pool, nil
}

// resolverHost procura o domínio no registro central. A busca tolera os
// cadastros irregulares herdados: tenta o domínio exato, depois com
// ".com" anexado e por fim por prefixo.
func resolverHost(ctx context.Context, dominio string) (string, error) {
	dominio = strings.ToLower(strings.TrimSpace(dominio))
	if dominio == "" {
		return "", ErrEmpresaNaoEncontrada
	}

	chave := "dominio:" + dominio
	if cacheDominio != nil {
		if host, err := cacheDominio.Obter(ctx, chave); err == nil {
			return host, nil
		}
	}

	var host string
	err := Registro.QueryRow(ctx,
		`SELECT ip FROM empresas_clientes WHERE dominio = $1`, dominio).Scan(&host)
	if errors.Is(err, pgx.ErrNoRows) {
		err = Registro.QueryRow(ctx,
			`SELECT ip FROM empresas_clientes WHERE dominio = $1`, dominio+".com").Scan(&host)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		err = Registro.QueryRow(ctx,
			`SELECT ip FROM empresas_clientes WHERE dominio LIKE $1 ORDER BY dominio LIMIT 1`,
			dominio+"%").Scan(&host)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmpresaNaoEncontrada
	}
	if err != nil {
		return "", fmt.Errorf("resolver domínio %s: %w", dominio, err)
	}

	if cacheDominio != nil {
		if err := cacheDominio.Definir(ctx, chave, host, cacheDominioTTL); err != nil {
			log.Printf("Aviso: falha ao guardar domínio no cache: %v", err)
		}
	}
	return host, nil
}

// CloseDB fecha o registro central e todos os pools de tenant.
func CloseDB() {
	if Registro != nil {
		Registro.Close()
	}
	poolsMu.Lock()
	defer poolsMu.Unlock()
	for host, pool := range pools {
		pool.Close()
		delete(pools, host)
	}
	log.Println("Pools de conexão fechados")
}

func envOu(nome, padrao string) string {
	if v := os.Getenv(nome); v != "" {
		return v
	}
	return padrao
}
