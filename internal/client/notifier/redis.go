package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/logging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel = "juizlab:session"

	dialTimeout = 3 * time.Second
	pingTimeout = 2 * time.Second
)

// NewRedisClient parses a redis:// URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	opts.DialTimeout = dialTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return client, nil
}

type envelope struct {
	Instance string `json:"instance"`
	Event    Event  `json:"event"`
}

// Redis extends Local across processes through a pub/sub channel. Events
// are delivered locally first and then published; messages published by
// this instance are not delivered twice.
type Redis struct {
	*Local

	client   redis.UniversalClient
	channel  string
	instance string
	logger   logging.Logger

	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
}

// NewRedis subscribes to channel and starts relaying remote events to local
// subscribers. Close releases the subscription.
func NewRedis(ctx context.Context, client redis.UniversalClient, channel string, logger logging.Logger) (*Redis, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = logging.Nop()
	}

	ps := client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	r := &Redis{
		Local:    NewLocal(),
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		logger:   logger.With("component", "notifier", "channel", channel),
		pubsub:   ps,
		done:     make(chan struct{}),
	}
	go r.relay(ps.Channel())
	return r, nil
}

func (r *Redis) relay(msgs <-chan *redis.Message) {
	defer close(r.done)

	for msg := range msgs {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			r.logger.Warn(context.Background(), "discarding malformed event", "err", err)
			continue
		}
		if env.Instance == r.instance {
			continue
		}
		_ = r.Local.Notify(context.Background(), env.Event)
	}
}

func (r *Redis) Notify(ctx context.Context, ev Event) error {
	_ = r.Local.Notify(ctx, ev)

	b, err := json.Marshal(envelope{Instance: r.instance, Event: ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, b).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	var err error
	r.once.Do(func() {
		err = r.pubsub.Close()
		<-r.done
	})
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
