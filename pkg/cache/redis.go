package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"clipstream.com/config"
)

// Logical databases carved out of the one Redis instance, one per concern.
const (
	DBInteraction = 0
	DBAggregator  = 1
)

var (
	InteractionClient *redis.Client
	AggregatorClient  *redis.Client
)

func Init() error {
	InteractionClient = newClient(DBInteraction)
	AggregatorClient = newClient(DBAggregator)

	ctx := context.Background()
	if err := InteractionClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return AggregatorClient.Ping(ctx).Err()
}

func newClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.ConfigInfo.Redis.Addr,
		Password: config.ConfigInfo.Redis.Password,
		DB:       db,
	})
}
