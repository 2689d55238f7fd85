package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bidscout-engine/internal/domain"
)

// RedisStore keeps sessions as JSON values that expire with the session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "bidscout:session"}
}

func (r *RedisStore) key(userID string, platform domain.Platform) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, platform, userID)
}

func (r *RedisStore) Save(ctx context.Context, s domain.SessionState) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("refusing to store an expired session")
	}
	b, err := Encode(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(s.UserID, s.Platform), b, ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context, userID string, platform domain.Platform) (domain.SessionState, error) {
	b, err := r.client.Get(ctx, r.key(userID, platform)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionState{}, ErrNotFound
	}
	if err != nil {
		return domain.SessionState{}, err
	}
	return Decode(b)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
