// Package pubsub fans out Table updates to subscribers over Redis
// Pub/Sub, implementing the adapter's SubscribeTable contract.
package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds the connection parameters for the shared Redis client.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Client wraps redis.Client with the connect/health lifecycle the
// coordinator and locks.Manager share.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// New dials Redis and verifies connectivity before returning.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	rc := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	log.Info("connected to redis", zap.String("addr", addr))
	return &Client{Client: rc, log: log}, nil
}

// HealthCheck pings Redis, used by the /healthz surface.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func tableChannel(tableID string) string {
	return "table:" + tableID
}

// PublishTable broadcasts the JSON-encoded Table payload to every active
// subscriber of tableID. Called by the coordinator after a successful
// commit.
func (c *Client) PublishTable(ctx context.Context, tableID string, payload []byte) error {
	return c.Publish(ctx, tableChannel(tableID), payload).Err()
}

// SubscribeTable implements the adapter's streaming-read contract: onData
// fires with every published payload and the returned cancel func tears it
// down. onError is never called here: when the message channel closes or
// the context ends, delivery stops silently.
func (c *Client) SubscribeTable(ctx context.Context, tableID string, onData func([]byte), onError func(error)) (cancel func()) {
	sub := c.Subscribe(ctx, tableChannel(tableID))
	subCtx, stop := context.WithCancel(ctx)

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				onData([]byte(msg.Payload))
			}
		}
	}()

	go func() {
		<-subCtx.Done()
		if err := sub.Close(); err != nil {
			c.log.Warn("error closing table subscription", zap.String("tableId", tableID), zap.Error(err))
		}
	}()

	return func() { stop() }
}
