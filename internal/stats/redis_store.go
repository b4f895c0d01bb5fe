package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/mcgate/protocol"
)

// RedisStore keeps all counters in one hash at <prefix>packets.
type RedisStore struct {
	c       *redis.Client
	prefix  string
	timeout time.Duration
}

var _ BatchStore = (*RedisStore)(nil)

func NewRedisStore(c *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "mcgate:"
	}
	return &RedisStore{c: c, prefix: keyPrefix, timeout: time.Second}
}

func (s *RedisStore) Client() *redis.Client {
	return s.c
}

func (s *RedisStore) Prefix() string {
	return s.prefix
}

func (s *RedisStore) Record(state protocol.State, name string) error {
	field, err := Key(state, name)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.c.HIncrBy(ctx, s.keyPackets(), field, 1).Err()
}

// RecordBatch applies counts, keyed as by Key, in one pipelined round trip.
func (s *RedisStore) RecordBatch(counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err := s.c.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for field, n := range counts {
			pipe.HIncrBy(ctx, s.keyPackets(), field, n)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Snapshot() (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := s.c.HGetAll(ctx, s.keyPackets()).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stats: counter %s: %w", field, err)
		}
		out[field] = n
	}
	return out, nil
}

func (s *RedisStore) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.c.Del(ctx, s.keyPackets()).Err()
}

func (s *RedisStore) keyPackets() string {
	return s.prefix + "packets"
}
