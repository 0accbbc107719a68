package alias

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding origin host -> alias fields.
const DefaultRedisKey = "code-open:aliases"

// redisStore reads the table from a Redis hash so several workstations
// can share one alias list. A missing key is an empty table.
type redisStore struct {
	client *redis.Client
	key    string
	addr   string
}

func newRedisStore(ctx context.Context, addr, password string, db int, key string) (*redisStore, error) {
	if key == "" {
		key = DefaultRedisKey
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, &ConfigError{Location: "redis://" + addr, Err: fmt.Errorf("redis connection failed: %w", err)}
	}
	return &redisStore{client: rdb, key: key, addr: addr}, nil
}

var _ Store = (*redisStore)(nil)

func (r *redisStore) Location() string { return "redis://" + r.addr + "/" + r.key }

// Load fetches the hash once and closes the client; the table is not
// refreshed for the lifetime of the server.
func (r *redisStore) Load(ctx context.Context) (Table, error) {
	defer r.client.Close()
	m, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, &ConfigError{Location: r.Location(), Err: fmt.Errorf("redis hgetall failed: %w", err)}
	}
	table := Table(m)
	if err := table.Validate(); err != nil {
		return nil, &ConfigError{Location: r.Location(), Err: err}
	}
	return table, nil
}
