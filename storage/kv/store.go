package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indica que a chave não existe (ou já expirou).
var ErrNotFound = errors.New("kv: key not found")

// Store é o contrato mínimo do armazenamento.
//
// ttl <= 0 em Put significa "sem expiração".
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Incrementer é implementado por stores que oferecem incremento atômico.
// O ttl é (re)aplicado a cada incremento.
type Incrementer interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Result é o resultado explícito de uma leitura.
//
// Quem chama decide o fallback: Failed() => falha de infra, Hit() => valor presente.
type Result struct {
	Value string
	Found bool
	Err   error
}

func (r Result) Failed() bool { return r.Err != nil }

func (r Result) Hit() bool { return r.Err == nil && r.Found }

// Read lê key e separa "não encontrado" de falha do store.
func Read(ctx context.Context, s Store, key string) Result {
	v, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return Result{Value: v, Found: true}
	case errors.Is(err, ErrNotFound):
		return Result{}
	default:
		return Result{Err: err}
	}
}
