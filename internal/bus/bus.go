// Package bus decouples message producers from the Telegram sender: user
// messages flow inbound to the conversation worker, replies and scheduled
// notifications flow outbound to the chat.
package bus

import (
	"context"
	"sync"
	"time"
)

// Source identifies who put a message on the bus.
const (
	SourceTelegram  = "telegram"
	SourceScheduler = "scheduler"
)

// Message is one unit of traffic on the bus.
type Message struct {
	ID        string
	Source    string
	UserID    int64
	ChatID    int64
	Text      string
	Timestamp time.Time
}

// Bus is an in-process message bus with buffered inbound and outbound
// channels.
type Bus struct {
	inbound  chan Message
	outbound chan Message
	closed   chan struct{}
	once     sync.Once
}

// New creates a bus with room for 100 messages in each direction.
func New() *Bus {
	return &Bus{
		inbound:  make(chan Message, 100),
		outbound: make(chan Message, 100),
		closed:   make(chan struct{}),
	}
}

// PublishInbound queues a user message for the conversation worker.
// Messages published after Close are dropped.
func (b *Bus) PublishInbound(msg Message) {
	select {
	case <-b.closed:
		return
	default:
		select {
		case b.inbound <- msg:
		case <-b.closed:
		}
	}
}

// ConsumeInbound blocks until a user message is available, the context is
// canceled, or the bus is closed.
func (b *Bus) ConsumeInbound(ctx context.Context) (Message, bool) {
	select {
	case msg, ok := <-b.inbound:
		return msg, ok
	case <-ctx.Done():
		return Message{}, false
	case <-b.closed:
		return Message{}, false
	}
}

// PublishOutbound queues a message for delivery to the user's chat.
func (b *Bus) PublishOutbound(msg Message) {
	select {
	case <-b.closed:
		return
	default:
		select {
		case b.outbound <- msg:
		case <-b.closed:
		}
	}
}

// SubscribeOutbound blocks until an outbound message is available, the
// context is canceled, or the bus is closed.
func (b *Bus) SubscribeOutbound(ctx context.Context) (Message, bool) {
	select {
	case msg, ok := <-b.outbound:
		return msg, ok
	case <-ctx.Done():
		return Message{}, false
	case <-b.closed:
		return Message{}, false
	}
}

// Close shuts down the bus. Pending messages are discarded.
func (b *Bus) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}
