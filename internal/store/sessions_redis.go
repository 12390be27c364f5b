package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const swapRefreshScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
  return 1
end
return 0
`

var swapRefreshLua = redis.NewScript(swapRefreshScript)

// RedisSessions keeps one refresh token per user under prefix+userID, with a
// TTL equal to the refresh token lifetime.
type RedisSessions struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisSessions(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSessions {
	if prefix == "" {
		prefix = "session:refresh:"
	}
	return &RedisSessions{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSessions) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisSessions) RefreshToken(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (s *RedisSessions) SetRefreshToken(ctx context.Context, userID, token string) error {
	return s.client.Set(ctx, s.key(userID), token, s.ttl).Err()
}

func (s *RedisSessions) SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}
	swapped, err := swapRefreshLua.Run(ctx, s.client, []string{s.key(userID)},
		expected, next, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return swapped == 1, nil
}

func (s *RedisSessions) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
