package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc extrai o identificador do cliente.
type KeyFunc func(r *http.Request) string

// ConnectingIPHeader é o header com o IP da conexão definido pela plataforma de borda.
const ConnectingIPHeader = "CF-Connecting-IP"

// DefaultKeyFunc resolve o identificador nesta ordem:
//
//  1. keyHeader (se configurado e presente, ex: X-Api-Key)
//  2. primeiro IP de X-Forwarded-For (se trustForwarded)
//  3. CF-Connecting-IP (se trustForwarded)
//  4. host de RemoteAddr
//  5. "unknown"
func DefaultKeyFunc(keyHeader string, trustForwarded bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustForwarded {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			if ip := strings.TrimSpace(r.Header.Get(ConnectingIPHeader)); ip != "" {
				return ip
			}
		}

		addr := strings.TrimSpace(r.RemoteAddr)
		if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
			return host
		}
		if addr != "" {
			return addr
		}
		return "unknown"
	}
}
