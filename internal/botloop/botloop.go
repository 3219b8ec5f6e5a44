// Package botloop pumps messages from the bus through the router.
package botloop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/router"
)

// Loop consumes inbound messages with a fixed worker pool and publishes
// the router's responses back onto the bus.
type Loop struct {
	bus     *bus.MessageBus
	router  *router.Router
	workers int
}

func New(b *bus.MessageBus, r *router.Router, workers int) *Loop {
	if workers <= 0 {
		workers = 4
	}
	return &Loop{bus: b, router: r, workers: workers}
}

// Run blocks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.work(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (l *Loop) work(ctx context.Context) {
	for {
		msg, err := l.bus.ConsumeInbound(ctx)
		if err != nil {
			return
		}
		resp := l.router.Handle(ctx, msg)
		if resp == nil {
			continue
		}
		slog.Debug("publishing response", "channel", msg.Channel, "room", msg.Room, "trace_id", msg.TraceID)
		l.bus.PublishOutbound(&bus.OutboundMessage{
			Channel: msg.Channel,
			Room:    msg.Room,
			TraceID: msg.TraceID,
			Content: *resp,
		})
	}
}
