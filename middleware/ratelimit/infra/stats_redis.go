package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"starter-api/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore mantém os mesmos agregados do MemoryStatsStore em hashes
// Redis, compartilhados entre instâncias:
//
//	{prefix}:total   allowed | denied
//	{prefix}:source  {source}|allowed, {source}|denied
//	{prefix}:route   {method} {path}|allowed, ...
//	{prefix}:key     {key}|allowed, ...   (opcional, expira em ttl)
type RedisStatsStore struct {
	rdb *redis.Client

	prefix    string
	keyTTL    time.Duration
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// WithStatsKeyTTL controla a expiração do hash por identificador; <= 0 não expira.
func WithStatsKeyTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.keyTTL = d }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: domain.DefaultPrefix + ":stats",
		keyTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) hash(name string) string { return s.prefix + ":" + name }

func result(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	res := result(ev.Allowed)

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.hash("total"), res, 1)
		if ev.Source != "" {
			pipe.HIncrBy(ctx, s.hash("source"), ev.Source+"|"+res, 1)
		}
		if route := strings.TrimSpace(ev.Method + " " + ev.Path); route != "" {
			pipe.HIncrBy(ctx, s.hash("route"), route+"|"+res, 1)
		}
		if s.trackKeys && ev.Key != "" {
			pipe.HIncrBy(ctx, s.hash("key"), string(ev.Key)+"|"+res, 1)
			if s.keyTTL > 0 {
				pipe.Expire(ctx, s.hash("key"), s.keyTTL)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record rate limit stats: %w", err)
	}
	return nil
}

// ReadStats lê os hashes numa única ida ao Redis.
func (s *RedisStatsStore) ReadStats(ctx context.Context) (StatsSnapshot, error) {
	var total, bySource, byRoute, byKey *redis.MapStringStringCmd
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		total = pipe.HGetAll(ctx, s.hash("total"))
		bySource = pipe.HGetAll(ctx, s.hash("source"))
		byRoute = pipe.HGetAll(ctx, s.hash("route"))
		if s.trackKeys {
			byKey = pipe.HGetAll(ctx, s.hash("key"))
		}
		return nil
	})
	if err != nil {
		return StatsSnapshot{}, fmt.Errorf("read rate limit stats: %w", err)
	}

	snap := StatsSnapshot{
		BySource: groupCounters(bySource.Val()),
		ByRoute:  groupCounters(byRoute.Val()),
	}
	for res, v := range total.Val() {
		addCount(&snap.Total, res, v)
	}
	if byKey != nil {
		snap.ByKey = groupCounters(byKey.Val())
	}
	return snap, nil
}

// groupCounters converte campos "{nome}|{resultado}" em Counters por nome.
func groupCounters(fields map[string]string) map[string]Counters {
	out := make(map[string]Counters, len(fields)/2)
	for field, v := range fields {
		i := strings.LastIndexByte(field, '|')
		if i < 0 {
			continue
		}
		c := out[field[:i]]
		addCount(&c, field[i+1:], v)
		out[field[:i]] = c
	}
	return out
}

func addCount(c *Counters, res, v string) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return
	}
	switch res {
	case "allowed":
		c.Allowed += n
	case "denied":
		c.Denied += n
	}
}
