package domain

import "time"

// Limiter decide se uma ação é permitida agora (ex: token bucket em memória).
type Limiter interface {
	Allow() bool
}

// RetryEstimator é opcional: estima quando o próximo Allow vai passar.
type RetryEstimator interface {
	RetryAfter() time.Duration
}

// LimiterStore obtém um limiter por chave (ex: IP, API key).
type LimiterStore interface {
	Get(Key) Limiter
}
