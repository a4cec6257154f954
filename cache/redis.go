package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implementa Store sobre um Redis compartilhado entre as
// réplicas da API.
type RedisStore struct {
	cliente *redis.Client
}

func NovoRedisStore(endereco, senha string, banco int) (*RedisStore, error) {
	cliente := redis.NewClient(&redis.Options{
		Addr:     endereco,
		Password: senha,
		DB:       banco,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cliente.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("conectar ao redis em %s: %w", endereco, err)
	}
	return &RedisStore{cliente: cliente}, nil
}

func (s *RedisStore) Definir(ctx context.Context, chave, valor string, ttl time.Duration) error {
	return s.cliente.Set(ctx, chave, valor, ttl).Err()
}

func (s *RedisStore) Obter(ctx context.Context, chave string) (string, error) {
	valor, err := s.cliente.Get(ctx, chave).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNaoEncontrado
	}
	if err != nil {
		return "", err
	}
	return valor, nil
}

func (s *RedisStore) Apagar(ctx context.Context, chave string) error {
	return s.cliente.Del(ctx, chave).Err()
}

func (s *RedisStore) Fechar() error {
	return s.cliente.Close()
}
