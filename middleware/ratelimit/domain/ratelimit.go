package domain

import (
	"fmt"
	"time"
)

const (
	DefaultMax    = 100
	DefaultWindow = 60 * time.Second
	DefaultPrefix = "ratelimit"

	// MinTTL é o menor ttl gravado no store para um contador.
	MinTTL = 60 * time.Second
)

type Key string

// Rule limita Max requisições por identificador e path dentro de uma janela fixa.
//
// Campos zerados herdam os padrões do limiter. Disabled desliga o limite da rota.
type Rule struct {
	Max      int
	Window   time.Duration
	Disabled bool
}

// Or preenche campos zerados com os de def.
func (r Rule) Or(def Rule) Rule {
	if r.Max <= 0 {
		r.Max = def.Max
	}
	if r.Window <= 0 {
		r.Window = def.Window
	}
	return r
}

// WindowSeconds é a janela em segundos inteiros (mínimo 1).
func (r Rule) WindowSeconds() int64 {
	s := int64(r.Window / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

// CounterTTL é max(MinTTL, janela).
func (r Rule) CounterTTL() time.Duration {
	if w := time.Duration(r.WindowSeconds()) * time.Second; w > MinTTL {
		return w
	}
	return MinTTL
}

// WindowStart alinha now (epoch, segundos) ao início da janela: now - now%window.
func WindowStart(now, window int64) int64 {
	return now - now%window
}

// CounterKey monta "{prefix}:{identifier}:{path}:{windowStart}".
func CounterKey(prefix, identifier, path string, windowStart int64) Key {
	return Key(fmt.Sprintf("%s:%s:%s:%d", prefix, identifier, path, windowStart))
}

type Decision struct {
	Allowed bool
	Key     Key

	Limit int
	// Current é a contagem lida antes desta requisição.
	Current   int
	Remaining int

	// RetryAfter é o tempo até o fim da janela (ou até o próximo token, no guard).
	RetryAfter time.Duration
}
