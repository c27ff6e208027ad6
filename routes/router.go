// Package routes monta a superfície HTTP: boas-vindas, docs, tasks, rotas de
// armazenamento (kv, db, bucket) e as rotas de demonstração dos plugins.
package routes

import (
	"context"
	"net/http"
	"time"

	"starter-api/middleware/cache"
	"starter-api/middleware/ratelimit"
	"starter-api/middleware/ratelimit/infra"
	"starter-api/storage/blob"
	"starter-api/storage/kv"
	"starter-api/storage/notes"

	"go.uber.org/zap"
)

// NoteStore é o repositório relacional usado pelas rotas /db.
type NoteStore interface {
	Init(ctx context.Context) error
	List(ctx context.Context) ([]notes.Note, error)
	Create(ctx context.Context, content string) (notes.Note, error)
	Delete(ctx context.Context, id int64) error
}

// ObjectStore é o bucket usado pelas rotas /bucket.
type ObjectStore interface {
	List(ctx context.Context) ([]blob.ObjectInfo, error)
	Get(ctx context.Context, key string) (blob.Object, error)
	Put(ctx context.Context, key string, data []byte) (blob.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// StatsReader expõe os agregados de decisões do rate limit.
type StatsReader interface {
	ReadStats(ctx context.Context) (infra.StatsSnapshot, error)
}

type Deps struct {
	KV      kv.Store
	Notes   NoteStore
	Bucket  ObjectStore
	Cache   *cache.Cache
	Limiter *ratelimit.RateLimiter

	// Opcionais.
	Stats   StatsReader
	Metrics http.Handler
	Checks  map[string]func(context.Context) error

	Logger *zap.Logger
}

type handlers struct {
	kv     kv.Store
	notes  NoteStore
	bucket ObjectStore
	stats  StatsReader
	checks map[string]func(context.Context) error
	logger *zap.Logger
	now    func() time.Time
}

// New registra todas as rotas. Cache e Limiter nil usam as opções padrão
// sobre o KV informado.
func New(d Deps) *http.ServeMux {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.New(cache.Options{Store: d.KV, Logger: d.Logger})
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.New(ratelimit.Options{Store: d.KV, TrustForwarded: true, Logger: d.Logger})
	}

	h := &handlers{
		kv:     d.KV,
		notes:  d.Notes,
		bucket: d.Bucket,
		stats:  d.Stats,
		checks: d.Checks,
		logger: d.Logger.With(zap.String("component", "routes")),
		now:    time.Now,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.welcome)
	mux.HandleFunc("GET /docs", h.docs)
	mux.HandleFunc("GET /docs/openapi.json", h.openAPI)
	mux.HandleFunc("GET /healthz", h.health)

	mux.HandleFunc("GET /tasks", h.listTasks)
	mux.HandleFunc("POST /tasks", h.createTask)
	mux.HandleFunc("GET /tasks/{taskSlug}", h.getTask)
	mux.HandleFunc("DELETE /tasks/{taskSlug}", h.deleteTask)

	mux.HandleFunc("GET /kv/{key}", h.getKey)
	mux.HandleFunc("PUT /kv/{key}", h.putKey)
	mux.HandleFunc("DELETE /kv/{key}", h.deleteKey)

	mux.HandleFunc("POST /db/init", h.initDB)
	mux.HandleFunc("GET /db/notes", h.listNotes)
	mux.HandleFunc("POST /db/notes", h.createNote)
	mux.HandleFunc("DELETE /db/notes/{id}", h.deleteNote)

	mux.HandleFunc("GET /bucket", h.listObjects)
	mux.HandleFunc("GET /bucket/{key}", h.getObject)
	mux.HandleFunc("PUT /bucket/{key}", h.putObject)
	mux.HandleFunc("DELETE /bucket/{key}", h.deleteObject)

	cached := d.Cache.Route
	mux.Handle("GET /demo/cached", cached(cache.TTL(60*time.Second))(http.HandlerFunc(h.demoCached)))
	mux.Handle("GET /demo/cached-long", cached(cache.TTL(300*time.Second))(http.HandlerFunc(h.demoCachedLong)))
	mux.HandleFunc("GET /demo/not-cached", h.demoNotCached)

	limited := d.Limiter.Limit
	mux.Handle("GET /demo/rate-limited", limited(ratelimit.Rule{Max: 5, Window: 60 * time.Second})(http.HandlerFunc(h.demoRateLimited)))
	mux.Handle("GET /demo/rate-limited-strict", limited(ratelimit.Rule{Max: 3, Window: 60 * time.Second})(http.HandlerFunc(h.demoRateLimitedStrict)))
	mux.HandleFunc("GET /demo/no-limit", h.demoNoLimit)

	if d.Stats != nil {
		mux.HandleFunc("GET /stats/ratelimit", h.rateStats)
	}
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	return mux
}
