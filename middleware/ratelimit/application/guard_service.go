package application

import (
	"math"
	"time"

	"starter-api/middleware/ratelimit/domain"
)

// GuardService decide com base num limiter em memória por chave.
//
// Não sabe nada de HTTP; apenas devolve uma decisão.
type GuardService struct {
	Store domain.LimiterStore
	// RetryAfter mínimo sugerido quando bloquear.
	RetryAfter time.Duration
}

func (s GuardService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true, Key: key}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true, Key: key}
	}

	retry := s.RetryAfter
	if est, ok := lim.(domain.RetryEstimator); ok {
		if d := est.RetryAfter(); d > retry {
			retry = time.Duration(math.Ceil(d.Seconds())) * time.Second
		}
	}
	return domain.Decision{Allowed: false, Key: key, RetryAfter: retry}
}
