package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

type scope struct {
	table  string
	filter string
}

type channel struct {
	cancel    context.CancelFunc
	connected atomic.Bool
	mu        sync.Mutex
	subs      map[*Subscription]struct{}
}

// Registry owns one upstream feed channel per (table, filter) scope,
// reference-counted across subscribers. N screens watching the same scope
// share a single channel; the channel tears down when the last one leaves.
type Registry struct {
	feed Feed
	log  *slog.Logger

	mu       sync.Mutex
	channels map[scope]*channel
}

func NewRegistry(feed Feed, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		feed:     feed,
		log:      log,
		channels: make(map[scope]*channel),
	}
}

// Subscription is one subscriber's registration. Close releases it; the
// underlying channel survives while other subscribers remain.
type Subscription struct {
	registry *Registry
	scope    scope
	channel  *channel
	mask     EventType
	handlers Handlers
	closed   atomic.Bool
}

// Subscribe registers handlers for change events on table, optionally
// narrowed by filter. mask limits which event types are delivered
// (EventAll for everything).
func (r *Registry) Subscribe(table, filter string, mask EventType, handlers Handlers) (*Subscription, error) {
	if table == "" {
		return nil, fmt.Errorf("realtime subscribe: table is required")
	}
	if mask == "" {
		mask = EventAll
	}

	sc := scope{table: table, filter: filter}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[sc]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		ch = &channel{
			cancel: cancel,
			subs:   make(map[*Subscription]struct{}),
		}

		events, err := r.feed.Open(ctx, table, filter, func(connected bool) {
			ch.connected.Store(connected)
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("realtime subscribe %s: %w", table, err)
		}

		r.channels[sc] = ch
		go r.pump(sc, ch, events)
	}

	sub := &Subscription{
		registry: r,
		scope:    sc,
		channel:  ch,
		mask:     mask,
		handlers: handlers,
	}

	ch.mu.Lock()
	ch.subs[sub] = struct{}{}
	ch.mu.Unlock()

	return sub, nil
}

// pump fans feed events out to the scope's subscribers until the feed
// channel closes.
func (r *Registry) pump(sc scope, ch *channel, events <-chan Event) {
	for ev := range events {
		ch.mu.Lock()
		subs := make([]*Subscription, 0, len(ch.subs))
		for sub := range ch.subs {
			subs = append(subs, sub)
		}
		ch.mu.Unlock()

		for _, sub := range subs {
			sub.deliver(ev)
		}
	}
	ch.connected.Store(false)
}

func (s *Subscription) deliver(ev Event) {
	if s.closed.Load() {
		return
	}
	if s.mask != EventAll && s.mask != ev.Type {
		return
	}

	switch ev.Type {
	case EventInsert:
		if s.handlers.OnInsert != nil {
			s.handlers.OnInsert(ev)
		}
	case EventUpdate:
		if s.handlers.OnUpdate != nil {
			s.handlers.OnUpdate(ev)
		}
	case EventDelete:
		if s.handlers.OnDelete != nil {
			s.handlers.OnDelete(ev)
		}
	}

	if s.handlers.OnChange != nil {
		s.handlers.OnChange(ev)
	}
}

// Connected reports whether the underlying feed channel is acknowledged.
func (s *Subscription) Connected() bool {
	return s.channel.connected.Load()
}

// Close releases the subscription. The upstream channel is cancelled when
// the last subscriber on the scope closes.
func (s *Subscription) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[s.scope]
	if !ok {
		return
	}

	ch.mu.Lock()
	delete(ch.subs, s)
	remaining := len(ch.subs)
	ch.mu.Unlock()

	if remaining == 0 {
		ch.cancel()
		delete(r.channels, s.scope)
	}
}

// ChannelCount reports how many upstream channels are open.
func (r *Registry) ChannelCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
