package cache

import (
	"bytes"
	"net/http"
	"time"

	"starter-api/middleware/cache/application"
	"starter-api/middleware/cache/domain"
	"starter-api/storage/kv"

	"go.uber.org/zap"
)

const HeaderCache = "X-Cache"

// Rule é a configuração por rota. TTL zero usa Options.TTL.
type Rule struct {
	TTL      time.Duration
	Disabled bool
}

// TTL cria a regra de uma rota cacheada por d (o piso de 60s vale mesmo assim).
func TTL(d time.Duration) Rule { return Rule{TTL: d} }

// Off desliga o cache de uma rota.
var Off = Rule{Disabled: true}

type Options struct {
	Store  kv.Store
	Prefix string
	TTL    time.Duration
	Logger *zap.Logger
}

type Cache struct {
	prefix string
	ttl    time.Duration
	svc    application.Service
}

func New(opts Options) *Cache {
	if opts.Prefix == "" {
		opts.Prefix = domain.DefaultPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = domain.DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		svc: application.Service{
			Store:  opts.Store,
			Logger: opts.Logger.With(zap.String("component", "cache")),
		},
	}
}

// Route devolve o middleware de cache para uma rota. Só GET é cacheado;
// só respostas 200 são gravadas.
func (c *Cache) Route(rule Rule) func(next http.Handler) http.Handler {
	if rule.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	ttl := rule.TTL
	if ttl <= 0 {
		ttl = c.ttl
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := domain.Key(c.prefix, r.URL.Path, r.URL.Query())
			if ent, ok := c.svc.Lookup(r.Context(), key); ok {
				w.Header().Set(HeaderCache, "HIT")
				w.Header().Set("Content-Type", ent.ContentType)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(ent.Body))
				return
			}

			w.Header().Set(HeaderCache, "MISS")
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			ct := w.Header().Get("Content-Type")
			if ct == "" {
				ct = domain.DefaultContentType
			}
			c.svc.Save(r.Context(), key, domain.Entry{Body: rec.body.String(), ContentType: ct}, ttl)
		})
	}
}

// recorder repassa a resposta ao cliente e guarda uma cópia do corpo.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
