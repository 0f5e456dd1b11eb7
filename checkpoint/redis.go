package checkpoint

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

const redisKeyPrefix = "agripolicy"

// RedisStore keeps snapshots in Redis, for setups where several training
// hosts share one checkpoint location.
type RedisStore struct {
	client *redis.Client
}

var _ types.CheckpointStore = &RedisStore{}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func redisKey(species, tag string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, slug(species), slug(tag))
}

func (r *RedisStore) Save(species, tag string, data []byte) error {
	if err := r.client.Set(context.Background(), redisKey(species, tag), data, 0).Err(); err != nil {
		return fmt.Errorf("redis save checkpoint: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(species, tag string) ([]byte, error) {
	data, err := r.client.Get(context.Background(), redisKey(species, tag)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("no checkpoint stored for %s/%s", species, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("redis load checkpoint: %w", err)
	}
	return data, nil
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
