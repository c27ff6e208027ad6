package application

import (
	"context"
	"strconv"
	"time"

	"starter-api/middleware/ratelimit/domain"
	"starter-api/storage/kv"

	"go.uber.org/zap"
)

// WindowService aplica o contador de janela fixa.
//
// Sem Atomic, a leitura e a escrita são operações separadas no store:
// requisições simultâneas podem ler o mesmo valor e subcontar (last-write-wins).
// Com Atomic e um store que implementa kv.Incrementer, o incremento é atômico.
type WindowService struct {
	Store  kv.Store
	Prefix string
	Atomic bool
	Now    func() time.Time
	Logger *zap.Logger
}

// Check avalia e, se permitido, contabiliza a requisição de identifier em path.
//
// Falhas do store nunca bloqueiam: leitura com erro conta como 0 e escrita
// com erro é descartada.
func (s WindowService) Check(ctx context.Context, identifier, path string, rule domain.Rule) domain.Decision {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	prefix := s.Prefix
	if prefix == "" {
		prefix = domain.DefaultPrefix
	}

	ts := now().Unix()
	window := rule.WindowSeconds()
	start := domain.WindowStart(ts, window)
	key := domain.CounterKey(prefix, identifier, path, start)

	dec := domain.Decision{
		Allowed:    true,
		Key:        key,
		Limit:      rule.Max,
		RetryAfter: time.Duration(start+window-ts) * time.Second,
	}
	if s.Store == nil {
		dec.Remaining = rule.Max - 1
		return dec
	}

	if inc, ok := s.Store.(kv.Incrementer); ok && s.Atomic {
		n, err := inc.Incr(ctx, string(key), rule.CounterTTL())
		if err != nil {
			log.Warn("rate limit increment failed, allowing request", zap.String("key", string(key)), zap.Error(err))
			dec.Remaining = rule.Max - 1
			return dec
		}
		dec.Current = int(n - 1)
		return decide(dec)
	}

	res := kv.Read(ctx, s.Store, string(key))
	if res.Failed() {
		log.Warn("rate limit read failed, counting as zero", zap.String("key", string(key)), zap.Error(res.Err))
	}
	dec.Current = parseCount(res)

	dec = decide(dec)
	if !dec.Allowed {
		return dec
	}

	next := strconv.Itoa(dec.Current + 1)
	if err := s.Store.Put(ctx, string(key), next, rule.CounterTTL()); err != nil {
		log.Warn("rate limit write failed, increment lost", zap.String("key", string(key)), zap.Error(err))
	}
	return dec
}

func decide(dec domain.Decision) domain.Decision {
	if dec.Current >= dec.Limit {
		dec.Allowed = false
		dec.Remaining = 0
		return dec
	}
	dec.Remaining = dec.Limit - dec.Current - 1
	return dec
}

// parseCount: ausente, ilegível ou falha => 0.
func parseCount(res kv.Result) int {
	if !res.Hit() {
		return 0
	}
	n, err := strconv.Atoi(res.Value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
