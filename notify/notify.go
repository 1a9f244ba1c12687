// Package notify fans user-facing events out to escalation sinks. The
// in-app notification list itself lives in the cache and is managed by the
// notifications service; sinks here carry admin escalations (missed clock
// outs, pending approvals) to Slack and email.
package notify

import (
	"context"
	"log/slog"

	"harborview.com/shiftman/model"
)

type Sink interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Fanout delivers to every sink; a failing sink is logged and skipped so
// one dead channel never blocks the others.
type Fanout struct {
	sinks []Sink
	log   *slog.Logger
}

func NewFanout(log *slog.Logger, sinks ...Sink) *Fanout {
	if log == nil {
		log = slog.Default()
	}
	return &Fanout{sinks: sinks, log: log}
}

func (f *Fanout) Notify(ctx context.Context, n model.Notification) error {
	for _, sink := range f.sinks {
		if err := sink.Notify(ctx, n); err != nil {
			f.log.Warn("notification sink failed", "title", n.Title, "error", err)
		}
	}
	return nil
}
