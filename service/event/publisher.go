package event

import (
	"context"
	"sync"
)

// Listener handles a published event. Listeners run synchronously on the
// goroutine of the unit that emitted the event, so they must not block.
type Listener func(event *Event)

// Publisher fans events out to its listeners. A nil *Publisher drops events.
type Publisher struct {
	mux       sync.RWMutex
	listeners []Listener
}

// NewPublisher creates a publisher with the supplied listeners.
func NewPublisher(listeners ...Listener) *Publisher {
	ret := &Publisher{}
	for _, l := range listeners {
		ret.Subscribe(l)
	}
	return ret
}

// Subscribe adds a listener; nil listeners are skipped.
func (p *Publisher) Subscribe(listener Listener) {
	if p == nil || listener == nil {
		return
	}
	p.mux.Lock()
	p.listeners = append(p.listeners, listener)
	p.mux.Unlock()
}

// Len returns the number of listeners.
func (p *Publisher) Len() int {
	if p == nil {
		return 0
	}
	p.mux.RLock()
	defer p.mux.RUnlock()
	return len(p.listeners)
}

// Publish delivers the event to every listener in subscription order.
func (p *Publisher) Publish(event *Event) {
	if p == nil || event == nil {
		return
	}
	p.mux.RLock()
	listeners := p.listeners
	p.mux.RUnlock()
	for _, listener := range listeners {
		listener(event)
	}
}

type publisherKeyT struct{}

var publisherKey publisherKeyT

// WithPublisher embeds the publisher in ctx.
func WithPublisher(ctx context.Context, publisher *Publisher) context.Context {
	return context.WithValue(ctx, publisherKey, publisher)
}

// PublisherFrom returns the publisher carried by ctx or nil.
func PublisherFrom(ctx context.Context) *Publisher {
	if ctx == nil {
		return nil
	}
	ret, _ := ctx.Value(publisherKey).(*Publisher)
	return ret
}
