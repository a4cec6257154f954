package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNaoEncontrado indica chave ausente ou expirada.
var ErrNaoEncontrado = errors.New("cache: chave não encontrada")

// Store é um armazém chave-valor com expiração. Guarda os códigos de
// redefinição de senha e a resolução dominio→host do registro central,
// dados que precisam sobreviver a reinícios e valer para todas as
// réplicas da API.
type Store interface {
	Definir(ctx context.Context, chave, valor string, ttl time.Duration) error
	Obter(ctx context.Context, chave string) (string, error)
	Apagar(ctx context.Context, chave string) error
}
