package broker

import (
	"sync"
)

// ReplyEvent announces the outcome of an asynchronous reply generation.
// Exactly one of MessageID/Content or Err is set.
type ReplyEvent struct {
	ConversationID string
	MessageID      string
	Content        string
	Err            error
}

// Broker fans ReplyEvents out to subscribers, keyed by conversation id.
type Broker struct {
	subscribers map[string][]chan ReplyEvent
	mu          sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan ReplyEvent),
	}
}

func (b *Broker) Subscribe(conversationID string) <-chan ReplyEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan ReplyEvent, 4)
	b.subscribers[conversationID] = append(b.subscribers[conversationID], ch)
	return ch
}

func (b *Broker) Unsubscribe(conversationID string, ch <-chan ReplyEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if chans, ok := b.subscribers[conversationID]; ok {
		for i, c := range chans {
			if c == ch {
				b.subscribers[conversationID] = append(chans[:i], chans[i+1:]...)
				close(c)
				break
			}
		}
	}
}

// Publish never blocks the generation goroutine: a subscriber that has
// fallen behind loses the event.
func (b *Broker) Publish(conversationID string, event ReplyEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[conversationID] {
		select {
		case ch <- event:
		default:
		}
	}
}
