package domain

import (
	"context"
	"errors"
)

// ErrNoSlot indica que o tempo de espera por uma vaga acabou.
var ErrNoSlot = errors.New("ratelimit: no slot available")

// SlotPool é um recurso de capacidade finita (requisições em andamento).
//
// Acquire bloqueia até conseguir vaga ou o ctx encerrar; release deve ser
// chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
}
