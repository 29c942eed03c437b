// internal/mom/memory.go
package mom

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	memoryQueueCap = 256
	subscriberCap  = 64
)

type memQueue struct {
	ch chan []byte
}

type memSub struct {
	ch   chan []byte
	done <-chan struct{}
}

// Memory is an in-process Broker. Queues are buffered channels; topic
// subscribers that fall behind lose messages rather than stall publishers.
type Memory struct {
	mu     sync.Mutex
	queues map[string]*memQueue
	subs   map[string]map[*memSub]struct{}
	closed bool
	log    *log.Entry
}

var _ Broker = (*Memory)(nil)

// NewMemory returns an empty in-process broker.
func NewMemory(logger *log.Logger) *Memory {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Memory{
		queues: make(map[string]*memQueue),
		subs:   make(map[string]map[*memSub]struct{}),
		log:    logger.WithField("component", "mom.memory"),
	}
}

// queue returns name's queue, creating it on first use. mu must be held.
func (b *Memory) queue(name string) *memQueue {
	q, ok := b.queues[name]
	if !ok {
		q = &memQueue{ch: make(chan []byte, memoryQueueCap)}
		b.queues[name] = q
	}
	return q
}

func (b *Memory) DeclareQueue(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.queue(name)
	return nil
}

func (b *Memory) DeleteQueue(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if q, ok := b.queues[name]; ok {
		close(q.ch)
		delete(b.queues, name)
	}
	return nil
}

func (b *Memory) Send(ctx context.Context, queue string, body []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	q := b.queue(queue)
	select {
	case q.ch <- body:
		b.mu.Unlock()
		return nil
	default:
	}
	b.mu.Unlock()
	return fmt.Errorf("send to %s: queue full (%d messages)", queue, memoryQueueCap)
}

func (b *Memory) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	src := b.queue(queue).ch
	b.mu.Unlock()

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case body, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- body:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *Memory) QueueLen(_ context.Context, queue string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	q, ok := b.queues[queue]
	if !ok {
		return 0, nil
	}
	return len(q.ch), nil
}

func (b *Memory) Publish(_ context.Context, topic string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for s := range b.subs[topic] {
		select {
		case <-s.done:
			continue
		default:
		}
		select {
		case s.ch <- body:
		default:
			b.log.WithField("topic", topic).Warn("subscriber lagging, message dropped")
		}
	}
	return nil
}

func (b *Memory) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	s := &memSub{ch: make(chan []byte, subscriberCap), done: ctx.Done()}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memSub]struct{})
	}
	b.subs[topic][s] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[topic][s]; ok {
			delete(b.subs[topic], s)
			close(s.ch)
		}
	}()
	return s.ch, nil
}

func (b *Memory) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for name, q := range b.queues {
		close(q.ch)
		delete(b.queues, name)
	}
	for topic, set := range b.subs {
		for s := range set {
			close(s.ch)
		}
		delete(b.subs, topic)
	}
	return nil
}
