// Package application lê e grava entradas de cache no store chave-valor.
package application

import (
	"context"
	"encoding/json"
	"time"

	"starter-api/middleware/cache/domain"
	"starter-api/storage/kv"

	"go.uber.org/zap"
)

type Service struct {
	Store  kv.Store
	Logger *zap.Logger
}

func (s Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Lookup devolve a entrada de key. Falha do store ou JSON inválido contam como miss.
func (s Service) Lookup(ctx context.Context, key string) (domain.Entry, bool) {
	if s.Store == nil {
		return domain.Entry{}, false
	}

	res := kv.Read(ctx, s.Store, key)
	if res.Failed() {
		s.logger().Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(res.Err))
		return domain.Entry{}, false
	}
	if !res.Hit() || res.Value == "" {
		return domain.Entry{}, false
	}

	var ent domain.Entry
	if err := json.Unmarshal([]byte(res.Value), &ent); err != nil {
		s.logger().Warn("cache entry unreadable, treating as miss", zap.String("key", key), zap.Error(err))
		return domain.Entry{}, false
	}
	if ent.ContentType == "" {
		ent.ContentType = domain.DefaultContentType
	}
	return ent, true
}

// Save grava ent com ttl = max(60s, ttl). Erros são registrados e descartados.
func (s Service) Save(ctx context.Context, key string, ent domain.Entry, ttl time.Duration) {
	if s.Store == nil {
		return
	}

	raw, err := json.Marshal(ent)
	if err != nil {
		s.logger().Warn("cache entry encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.Store.Put(ctx, key, string(raw), domain.EffectiveTTL(ttl)); err != nil {
		s.logger().Warn("cache write failed, response not cached", zap.String("key", key), zap.Error(err))
	}
}
