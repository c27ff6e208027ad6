// Package ratelimit fornece middlewares net/http para rate limit e limite de concorrência.
//
// Camadas:
//
//   - domain: regras, chaves e decisões (sem net/http)
//   - application: casos de uso (janela fixa, guard, acquire/timeout)
//   - infra: implementações concretas (token bucket, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP, extração do identificador e
//     tradução da decisão para status/headers
//
// Fluxo do limiter de janela fixa (RateLimiter.Limit):
//
//  1. Extrai o identificador do cliente (header configurado, X-Forwarded-For,
//     CF-Connecting-IP, RemoteAddr ou "unknown")
//  2. Lê o contador {prefix}:{id}:{path}:{inicioDaJanela} no store chave-valor
//  3. Se contagem >= max, responde 429 sem chamar o handler
//  4. Senão grava contagem+1 (ttl = max(60s, janela)) e chama o próximo handler
//
// Falhas do store nunca bloqueiam a requisição (fail open).
package ratelimit
