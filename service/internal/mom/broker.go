// internal/mom/broker.go
package mom

import (
	"context"
	"errors"
)

// Names shared by the server and its clients.
const (
	ServerQueue     = "game_server_queue"
	GameStateTopic  = "game_state_updates"
	ChatTopic       = "chat_messages"
	userQueuePrefix = "user_queue_"
)

// UserQueue returns the private queue of a player.
func UserQueue(name string) string { return userQueuePrefix + name }

// ErrClosed is returned by operations on a closed broker.
var ErrClosed = errors.New("broker closed")

// Broker moves opaque messages between the server and its clients. Queues
// deliver each message to one consumer; topics fan out to every subscriber.
type Broker interface {
	// DeclareQueue creates a queue if it does not exist.
	DeclareQueue(ctx context.Context, name string) error
	// DeleteQueue removes a queue and any pending messages.
	DeleteQueue(ctx context.Context, name string) error
	// Send appends body to a queue.
	Send(ctx context.Context, queue string, body []byte) error
	// Consume delivers queue messages until ctx is done.
	Consume(ctx context.Context, queue string) (<-chan []byte, error)
	// QueueLen reports how many messages are waiting.
	QueueLen(ctx context.Context, queue string) (int, error)
	// Publish fans body out to the current subscribers of topic.
	Publish(ctx context.Context, topic string, body []byte) error
	// Subscribe delivers topic messages until ctx is done.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	// Close releases the broker. Open channels are closed.
	Close() error
}
