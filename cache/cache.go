package cache

import "github.com/redis/go-redis/v9"

var RedisClient *redis.Client

// InitRedis initialises the shared Redis client used for transcript
// read caching. Callers must ping before relying on it.
func InitRedis(addr, password string, db int) {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
