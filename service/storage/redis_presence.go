package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

var (
	rdb *redis.Client
	ctx = context.Background()
)

func InitRedis(c Config) error {
	rdb = redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	return rdb.Ping(ctx).Err()
}

func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}

// presence key: im:presence:<user>
// The in-memory registry is the delivery truth; these keys are a best-effort
// mirror so ops tooling can see who is online without asking the process.
func presenceKey(user string) string { return "im:presence:" + user }

// PresenceOnline marks the user online and renews the TTL.
func PresenceOnline(user string, ttl time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Set(ctx, presenceKey(user), "1", ttl).Err()
}

// PresenceOffline removes the user's presence key.
func PresenceOffline(user string) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup reports whether the mirror believes the user is online.
func PresenceLookup(user string) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis not initialized")
	}
	_, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
