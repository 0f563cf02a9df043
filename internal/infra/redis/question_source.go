package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"knowball-service/internal/domain"
)

const poolKey = "knowball:questions:pool"

// QuestionLoader fetches the question pool from a backing store (e.g. postgres).
type QuestionLoader interface {
	LoadAll(ctx context.Context) ([]domain.Question, error)
}

// QuestionSource caches the whole question pool in Redis as a JSON blob and
// falls back to the loader on cache miss. The pool is read once per round
// assembly, so a single key with TTL is enough; singleflight collapses
// concurrent misses into one loader call.
type QuestionSource struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionSource(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionSource {
	return &QuestionSource{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionSource) FetchAll(ctx context.Context) ([]domain.Question, error) {
	if pool, ok := s.fromCache(ctx); ok {
		return pool, nil
	}

	result, err, _ := s.sf.Do(poolKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := s.fromCache(ctx); ok {
			return pool, nil
		}

		pool, err := s.loader.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(pool); err == nil {
			_ = s.client.Set(ctx, poolKey, raw, s.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (s *QuestionSource) fromCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := s.client.Get(ctx, poolKey).Bytes()
	if err != nil {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, false
	}
	return pool, len(pool) > 0
}

func (s *QuestionSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
