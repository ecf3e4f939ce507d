package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// increaseScript bumps an existing entry; absent entries are left alone.
var increaseScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
local qty = redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
if tonumber(ARGV[2]) > 0 then
	redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return qty
`)

// decreaseScript lowers an existing entry and deletes it at zero.
var decreaseScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
local qty = redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
if qty <= 0 then
	redis.call('HDEL', KEYS[1], ARGV[1])
	qty = 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return qty
`)

// RedisStore keeps each cart in a hash "cart:<session>" of book ID to quantity.
// Every write refreshes the key's TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func cartKey(session string) string {
	return "cart:" + session
}

func (s *RedisStore) Get(ctx context.Context, session string) (Cart, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(session)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	c := Cart{}
	for field, value := range fields {
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("bad cart entry %q: %w", field, err)
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad quantity for book %d: %w", id, err)
		}
		if qty > 0 {
			c[id] = qty
		}
	}
	return c, nil
}

func (s *RedisStore) Add(ctx context.Context, session string, bookID int) error {
	key := cartKey(session)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, strconv.Itoa(bookID), 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Increase(ctx context.Context, session string, bookID int) error {
	return s.run(ctx, increaseScript, session, bookID)
}

func (s *RedisStore) Decrease(ctx context.Context, session string, bookID int) error {
	return s.run(ctx, decreaseScript, session, bookID)
}

func (s *RedisStore) Remove(ctx context.Context, session string, bookID int) error {
	if err := s.client.HDel(ctx, cartKey(session), strconv.Itoa(bookID)).Err(); err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, cartKey(session)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *RedisStore) run(ctx context.Context, script *redis.Script, session string, bookID int) error {
	ttl := int64(s.ttl / time.Second)
	err := script.Run(ctx, s.client, []string{cartKey(session)}, strconv.Itoa(bookID), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	return nil
}
