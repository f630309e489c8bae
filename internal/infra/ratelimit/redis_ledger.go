package ratelimit

import (
	"context"
	"strconv"
	"time"

	"booksum/internal/domain/repository"
	"booksum/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLedger shares the ledger between processes. Each identifier is a
// sorted set of attempt tokens scored by unix microseconds. Count runs as one
// MULTI/EXEC and Reserve as one Lua script, so the server never interleaves
// another client between prune, check and append.
type RedisLedger struct {
	rdb    redis.UniversalClient
	prefix string
	window time.Duration
	now    func() time.Time
}

var _ repository.AttemptLedger = (*RedisLedger)(nil)

// KEYS[1] set; ARGV cutoff, now, limit, token, ttl(ms). Returns 1 when recorded.
var reserveScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// NewRedisLedger wraps an existing client. A nil clock means time.Now.
func NewRedisLedger(rdb redis.UniversalClient, prefix string, window time.Duration, clock func() time.Time) *RedisLedger {
	if clock == nil {
		clock = time.Now
	}

	return &RedisLedger{rdb: rdb, prefix: prefix, window: window, now: clock}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, errors.Wrap(err, "ping redis")
	}

	return client, nil
}

func (l *RedisLedger) key(id string) string {
	return l.prefix + id
}

// cutoff is the oldest score still inside the window.
func (l *RedisLedger) cutoff(now time.Time) string {
	return strconv.FormatInt(now.Add(-l.window).UnixMicro(), 10)
}

// Count prunes expired attempts and returns the remainder.
func (l *RedisLedger) Count(ctx context.Context, id string) (int, error) {
	key := l.key(id)

	var card *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+l.cutoff(l.now()))
		card = pipe.ZCard(ctx, key)

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "count login attempts")
	}

	return int(card.Val()), nil
}

// Reserve records an attempt unless limit attempts are already inside the
// window. The key's expiry is refreshed so idle identifiers disappear on
// their own.
func (l *RedisLedger) Reserve(ctx context.Context, id string, limit int) (string, bool, error) {
	now := l.now()
	token := uuid.NewString()

	recorded, err := reserveScript.Run(ctx, l.rdb, []string{l.key(id)},
		l.cutoff(now),
		now.UnixMicro(),
		limit,
		token,
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return "", false, errors.Wrap(err, "reserve login attempt")
	}

	if recorded == 0 {
		return "", false, nil
	}

	return token, true, nil
}

// Release removes a reserved attempt.
func (l *RedisLedger) Release(ctx context.Context, id, token string) error {
	if err := l.rdb.ZRem(ctx, l.key(id), token).Err(); err != nil {
		return errors.Wrap(err, "release login attempt")
	}

	return nil
}

// Reset deletes the identifier's set.
func (l *RedisLedger) Reset(ctx context.Context, id string) error {
	if err := l.rdb.Del(ctx, l.key(id)).Err(); err != nil {
		return errors.Wrap(err, "reset login attempts")
	}

	return nil
}
