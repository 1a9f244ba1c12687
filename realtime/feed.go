package realtime

import (
	"context"
	"log/slog"
	"time"

	v1 "harborview.com/shiftman/backend/v1"
)

// PollFeed drives change events by long-polling the backend realtime
// endpoint. One polling loop runs per opened scope.
type PollFeed struct {
	api  *v1.RealtimeEndpoint
	wait time.Duration
	log  *slog.Logger
}

func NewPollFeed(api *v1.RealtimeEndpoint, log *slog.Logger) *PollFeed {
	if log == nil {
		log = slog.Default()
	}
	return &PollFeed{
		api:  api,
		wait: 20 * time.Second,
		log:  log,
	}
}

func (f *PollFeed) Open(ctx context.Context, table, filter string, status StatusFunc) (<-chan Event, error) {
	out := make(chan Event, 16)

	go func() {
		defer close(out)

		var cursor int64
		for {
			events, next, err := f.api.Poll(ctx, table, filter, cursor, f.wait)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				status(false)
				f.log.Warn("realtime poll failed", "table", table, "error", err)
				// back off briefly so a dead backend is not hammered
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
				}
				continue
			}

			status(true)
			cursor = next

			for _, e := range events {
				ev := Event{
					Table:     e.Table,
					Filter:    filter,
					Type:      EventType(e.Type),
					Record:    e.Record,
					OldRecord: e.OldRecord,
				}
				select {
				case <-ctx.Done():
					return
				case out <- ev:
				}
			}
		}
	}()

	return out, nil
}

// ChanFeed is an in-process feed: events published to it fan out to every
// open scope on the same table. Used by tests and demo mode.
type ChanFeed struct {
	ch chan chanFeedOp
}

type chanFeedSub struct {
	table  string
	filter string
	out    chan Event
	done   <-chan struct{}
}

type chanFeedOp struct {
	sub     *chanFeedSub
	unsub   *chanFeedSub
	publish *Event
}

func NewChanFeed() *ChanFeed {
	f := &ChanFeed{ch: make(chan chanFeedOp)}
	go f.run()
	return f
}

func (f *ChanFeed) run() {
	subs := make(map[*chanFeedSub]struct{})
	for op := range f.ch {
		switch {
		case op.sub != nil:
			subs[op.sub] = struct{}{}
		case op.unsub != nil:
			if _, ok := subs[op.unsub]; ok {
				delete(subs, op.unsub)
				close(op.unsub.out)
			}
		case op.publish != nil:
			ev := *op.publish
			for sub := range subs {
				if sub.table != ev.Table {
					continue
				}
				if sub.filter != "" && ev.Filter != "" && sub.filter != ev.Filter {
					continue
				}
				select {
				case sub.out <- ev:
				case <-sub.done:
				}
			}
		}
	}
}

func (f *ChanFeed) Open(ctx context.Context, table, filter string, status StatusFunc) (<-chan Event, error) {
	sub := &chanFeedSub{
		table:  table,
		filter: filter,
		out:    make(chan Event, 16),
		done:   ctx.Done(),
	}
	f.ch <- chanFeedOp{sub: sub}
	status(true)

	go func() {
		<-ctx.Done()
		f.ch <- chanFeedOp{unsub: sub}
	}()

	return sub.out, nil
}

// Publish delivers ev to every open scope watching its table.
func (f *ChanFeed) Publish(ev Event) {
	f.ch <- chanFeedOp{publish: &ev}
}
