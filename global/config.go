package global

import (
	"os"
	"strconv"
	"time"

	"github.com/Ksaikiran28/NexChat/tools/ids"
	jwtlib "github.com/Ksaikiran28/NexChat/tools/security"
)

// AppConfig carries everything main needs to wire the process. Values come
// from the environment with local-dev defaults.
type AppConfig struct {
	HTTPAddr string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	// Base endpoint of the media service; empty disables image cleanup.
	MediaEndpoint string

	NodeID int64
}

var Conf AppConfig

func Load() AppConfig {
	Conf = AppConfig{
		HTTPAddr:      envOr("NEXCHAT_HTTP_ADDR", ":5001"),
		MongoURI:      envOr("NEXCHAT_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: envOr("NEXCHAT_MONGO_DB", "nexchat"),
		RedisAddr:     envOr("NEXCHAT_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("NEXCHAT_REDIS_PASSWORD"),
		RedisDB:       envInt("NEXCHAT_REDIS_DB", 0),
		JWTSecret:     envOr("NEXCHAT_JWT_SECRET", "dev-only-secret"),
		JWTTTL:        envDuration("NEXCHAT_JWT_TTL", 72*time.Hour),
		MediaEndpoint: os.Getenv("NEXCHAT_MEDIA_ENDPOINT"),
		NodeID:        int64(envInt("NEXCHAT_NODE_ID", 1)),
	}
	return Conf
}

func (c AppConfig) JWTOptions() jwtlib.Options {
	opts := jwtlib.DefaultOptions([]byte(c.JWTSecret))
	opts.TTL = c.JWTTTL
	return opts
}

func ConfigIds() {
	ids.SetNodeID(Conf.NodeID)
}

func envOr(key, dflt string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return dflt
}

func envInt(key string, dflt int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return dflt
}

func envDuration(key string, dflt time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return dflt
}
