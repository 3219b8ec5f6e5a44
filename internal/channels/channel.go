package channels

import (
	"context"

	"github.com/molubot/molubot/internal/bus"
)

// Channel defines the interface for chat transports.
type Channel interface {
	// Name returns the channel name (e.g. "kafka").
	Name() string
	// Start starts the channel listener.
	Start(ctx context.Context) error
	// Stop stops the channel listener.
	Stop() error
	// Send sends a message to a specific room.
	Send(ctx context.Context, msg *bus.OutboundMessage) error
}

// BaseChannel provides common functionality for channels.
type BaseChannel struct {
	Bus *bus.MessageBus
}
