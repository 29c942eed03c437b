// internal/mom/redis.go
package mom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	redisQueuePrefix = "mom:queue:"
	redisQueueSet    = "mom:queues"
	popTimeout       = time.Second
)

// Redis is a Broker backed by Redis lists (queues) and pub/sub channels
// (topics).
type Redis struct {
	rdb *redis.Client
	log *log.Entry
}

var _ Broker = (*Redis)(nil)

// NewRedis wraps rdb. Close closes rdb.
func NewRedis(rdb *redis.Client, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Redis{rdb: rdb, log: logger.WithField("component", "mom.redis")}
}

func queueKey(name string) string { return redisQueuePrefix + name }

func (b *Redis) DeclareQueue(ctx context.Context, name string) error {
	if err := b.rdb.SAdd(ctx, redisQueueSet, name).Err(); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}

func (b *Redis) DeleteQueue(ctx context.Context, name string) error {
	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, queueKey(name))
		p.SRem(ctx, redisQueueSet, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete queue %s: %w", name, err)
	}
	return nil
}

func (b *Redis) Send(ctx context.Context, queue string, body []byte) error {
	if err := b.rdb.LPush(ctx, queueKey(queue), body).Err(); err != nil {
		return fmt.Errorf("send to %s: %w", queue, err)
	}
	return nil
}

// Consume pops from the queue with a blocking BRPOP loop. The loop wakes
// every popTimeout to observe ctx.
func (b *Redis) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	out := make(chan []byte)
	key := queueKey(queue)
	go func() {
		defer close(out)
		backoff := 100 * time.Millisecond
		for ctx.Err() == nil {
			res, err := b.rdb.BRPop(ctx, popTimeout, key).Result()
			switch {
			case errors.Is(err, redis.Nil):
				continue
			case err != nil:
				if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
					return
				}
				b.log.WithError(err).WithField("queue", queue).Warn("brpop failed, retrying")
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return
				}
				if backoff < 5*time.Second {
					backoff *= 2
				}
				continue
			}
			backoff = 100 * time.Millisecond
			// res is [key, value].
			select {
			case out <- []byte(res[1]):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Redis) QueueLen(ctx context.Context, queue string) (int, error) {
	n, err := b.rdb.LLen(ctx, queueKey(queue)).Result()
	if err != nil {
		return 0, fmt.Errorf("length of %s: %w", queue, err)
	}
	return int(n), nil
}

func (b *Redis) Publish(ctx context.Context, topic string, body []byte) error {
	if err := b.rdb.Publish(ctx, topic, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (b *Redis) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	ps := b.rdb.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	out := make(chan []byte, subscriberCap)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *Redis) Close() error {
	return b.rdb.Close()
}
