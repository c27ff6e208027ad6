package domain

import (
	"context"
	"time"
)

const (
	SourceWindow = "window"
	SourceGuard  = "guard"
)

// StatsEvent registra uma decisão do limiter.
//
// Cuidado com cardinalidade: Key e Path sem controle podem explodir o número
// de séries em Redis/Prometheus.
type StatsEvent struct {
	Source  string
	Key     Key
	Allowed bool

	Method string
	Path   string

	Limit int
	Count int

	At time.Time
}

// StatsStore persiste estatísticas. O middleware trata erros como best-effort.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
