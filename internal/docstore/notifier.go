package docstore

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const changeChannelPrefix = "docstore:changes:"

// Notifier fans out document change events between processes.
type Notifier interface {
	Publish(ctx context.Context, collection, id string) error
	Listen(ctx context.Context, collection string, fn func(id string)) (Unsubscribe, error)
}

// RedisNotifier publishes change events on per-collection Redis channels.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier constructs a RedisNotifier.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Publish announces that id in collection changed.
func (n *RedisNotifier) Publish(ctx context.Context, collection, id string) error {
	return n.client.Publish(ctx, changeChannelPrefix+collection, id).Err()
}

// Listen invokes fn with the id of every change published for collection
// until ctx is done or the returned func is called. The subscription is
// confirmed before Listen returns.
func (n *RedisNotifier) Listen(ctx context.Context, collection string, fn func(id string)) (Unsubscribe, error) {
	listenCtx, cancel := context.WithCancel(ctx)
	pubsub := n.client.Subscribe(listenCtx, changeChannelPrefix+collection)
	if _, err := pubsub.Receive(listenCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-listenCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

var _ Notifier = (*RedisNotifier)(nil)
