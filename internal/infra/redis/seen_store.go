package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "knowball:seen:"

// SeenStore keeps each user's seen-question IDs in a Redis set. Persistence is
// best-effort by contract: losing the history only means repeats come sooner,
// so callers treat failures as an empty set rather than a hard error.
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenStore builds the store. A zero ttl keeps seen sets forever.
func NewSeenStore(client *redis.Client, ttl time.Duration) *SeenStore {
	return &SeenStore{client: client, ttl: ttl}
}

func (s *SeenStore) Load(ctx context.Context, userKey string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.key(userKey)).Result()
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Save overwrites the stored set with ids.
func (s *SeenStore) Save(ctx context.Context, userKey string, ids []string) error {
	key := s.key(userKey)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	if len(ids) > 0 {
		members := make([]interface{}, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SeenStore) key(userKey string) string {
	return seenKeyPrefix + userKey
}
