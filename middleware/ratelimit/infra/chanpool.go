package infra

import (
	"context"

	"starter-api/middleware/ratelimit/domain"
)

// semaphore é um SlotPool sobre channel com buffer: cada slot ocupado é um
// elemento no buffer.
type semaphore chan struct{}

// NewChanPool cria o pool com capacidade max.
func NewChanPool(max int) domain.SlotPool {
	return make(semaphore, max)
}

func (s semaphore) release() { <-s }

func (s semaphore) Acquire(ctx context.Context) (func(), bool) {
	// slot livre não depende do ctx
	select {
	case s <- struct{}{}:
		return s.release, true
	default:
	}

	select {
	case s <- struct{}{}:
		return s.release, true
	case <-ctx.Done():
		return nil, false
	}
}

func (s semaphore) InUse() int { return len(s) }
