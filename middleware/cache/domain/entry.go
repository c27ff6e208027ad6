// Package domain define a entrada de cache, a chave normalizada e o piso de ttl.
package domain

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	DefaultPrefix      = "cache"
	DefaultTTL         = 60 * time.Second
	MinTTL             = 60 * time.Second
	DefaultContentType = "application/json"
)

// Entry é o valor gravado no store (JSON).
type Entry struct {
	Body        string `json:"body"`
	ContentType string `json:"contentType"`
}

// Key monta "{prefix}:{path}" seguido de "?{query}" com os parâmetros ordenados
// por nome. Valores repetidos de um mesmo nome mantêm a ordem original.
func Key(prefix, path string, query url.Values) string {
	if len(query) == 0 {
		return prefix + ":" + path
	}

	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		for _, v := range query[name] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	if b.Len() == 0 {
		return prefix + ":" + path
	}
	return prefix + ":" + path + "?" + b.String()
}

// EffectiveTTL aplica o piso: max(MinTTL, requested).
func EffectiveTTL(requested time.Duration) time.Duration {
	if requested < MinTTL {
		return MinTTL
	}
	return requested
}
