package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"starter-api/middleware/ratelimit/application"
	"starter-api/middleware/ratelimit/domain"
)

// GuardOptions configura o guard em memória (token bucket por cliente).
//
// É uma proteção local ao processo contra rajadas, aplicada antes do roteador;
// não substitui o limiter de janela fixa.
type GuardOptions struct {
	Store          domain.LimiterStore
	Stats          domain.StatsStore
	KeyFn          KeyFunc
	KeyHeader      string
	TrustForwarded bool
	RetryAfter     time.Duration
	// AddHeaders expõe X-Guard-RPS e X-Guard-Burst quando o store informa.
	AddHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

func GuardMiddleware(opts GuardOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustForwarded)
	}

	svc := application.GuardService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-Guard-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-Guard-Burst", formatInt(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Source:  domain.SourceGuard,
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}
			if !dec.Allowed {
				retry := formatInt(seconds(dec.RetryAfter))
				w.Header().Set("Retry-After", retry)
				writeError(w, http.StatusTooManyRequests,
					fmt.Sprintf("Too many requests in a short time. Try again in %s seconds.", retry))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
