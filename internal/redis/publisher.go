package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"barangay-events/internal/logger"
	"barangay-events/internal/models"
)

// Connect creates a client and checks it with PING.
func Connect(ctx context.Context, addr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
		client.Close()
		return nil, err
	}

	log.Info("REDIS", fmt.Sprintf("Successfully connected to Redis at %s", addr))
	return client, nil
}

// Publisher broadcasts event changes on a Redis pub/sub channel.
type Publisher struct {
	Client  *redis.Client
	Channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{Client: client, Channel: channel}
}

func (p *Publisher) Notify(ctx context.Context, change models.EventChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal event change: %w", err)
	}
	if err := p.Client.Publish(ctx, p.Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.Channel, err)
	}
	return nil
}
