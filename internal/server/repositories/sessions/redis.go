package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

type redisSession struct {
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisRepository keeps each session under "session:<id>" with a TTL equal
// to its remaining lifetime, so Redis expires records on its own.
type RedisRepository struct {
	client redis.Cmdable
}

func NewRedisRepository(client redis.Cmdable) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Create(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	data, err := json.Marshal(redisSession{AccountID: s.AccountID, ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt})
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return &models.Session{ID: id, AccountID: rs.AccountID, ExpiresAt: rs.ExpiresAt, CreatedAt: rs.CreatedAt}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
