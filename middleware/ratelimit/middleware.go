package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"starter-api/middleware/ratelimit/application"
	"starter-api/middleware/ratelimit/domain"
	"starter-api/storage/kv"

	"go.uber.org/zap"
)

// Rule é a configuração por rota. O valor zero usa Options.Max/Options.Window.
type Rule = domain.Rule

// Off desliga o limite de uma rota.
var Off = Rule{Disabled: true}

type Options struct {
	Store kv.Store
	Stats domain.StatsStore

	Prefix string
	// Padrões para campos zerados de Rule.
	Max    int
	Window time.Duration

	KeyFn          KeyFunc
	KeyHeader      string
	TrustForwarded bool

	// Atomic usa kv.Incrementer quando o store oferece.
	Atomic bool

	Logger *zap.Logger
	Now    func() time.Time
}

// RateLimiter aplica o contador de janela fixa por identificador e path.
type RateLimiter struct {
	defaults Rule
	keyFn    KeyFunc
	stats    domain.StatsStore
	svc      application.WindowService
	logger   *zap.Logger
}

func New(opts Options) *RateLimiter {
	if opts.Prefix == "" {
		opts.Prefix = domain.DefaultPrefix
	}
	if opts.Max <= 0 {
		opts.Max = domain.DefaultMax
	}
	if opts.Window <= 0 {
		opts.Window = domain.DefaultWindow
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustForwarded)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.With(zap.String("component", "ratelimit"))

	return &RateLimiter{
		defaults: Rule{Max: opts.Max, Window: opts.Window},
		keyFn:    opts.KeyFn,
		stats:    opts.Stats,
		logger:   logger,
		svc: application.WindowService{
			Store:  opts.Store,
			Prefix: opts.Prefix,
			Atomic: opts.Atomic,
			Now:    opts.Now,
			Logger: logger,
		},
	}
}

// Middleware é o atalho para New(opts).Limit(Rule{}).
func Middleware(opts Options) func(next http.Handler) http.Handler {
	return New(opts).Limit(Rule{})
}

// Limit devolve o middleware da rota com a regra informada.
func (l *RateLimiter) Limit(rule Rule) func(next http.Handler) http.Handler {
	if rule.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	rule = rule.Or(l.defaults)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := l.keyFn(r)
			dec := l.svc.Check(r.Context(), id, r.URL.Path, rule)
			l.record(r, dec)

			retry := formatInt(seconds(dec.RetryAfter))
			h := w.Header()
			h.Set("X-RateLimit-Limit", formatInt(rule.Max))
			h.Set("X-RateLimit-Reset", retry)
			h.Set("X-RateLimit-Remaining", formatInt(dec.Remaining))

			if !dec.Allowed {
				h.Set("Retry-After", retry)
				writeError(w, http.StatusTooManyRequests,
					fmt.Sprintf("Rate limit exceeded. Try again in %s seconds.", retry))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) record(r *http.Request, dec domain.Decision) {
	if l.stats == nil {
		return
	}
	// padrão da rota quando o ServeMux já resolveu, para não multiplicar séries
	path := r.URL.Path
	if r.Pattern != "" {
		path = r.Pattern
		if _, p, ok := strings.Cut(r.Pattern, " "); ok {
			path = p
		}
	}
	err := l.stats.Record(r.Context(), domain.StatsEvent{
		Source:  domain.SourceWindow,
		Key:     dec.Key,
		Allowed: dec.Allowed,
		Method:  r.Method,
		Path:    path,
		Limit:   dec.Limit,
		Count:   dec.Current,
		At:      time.Now(),
	})
	if err != nil {
		l.logger.Debug("stats record failed", zap.Error(err))
	}
}
