package channels

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/config"
)

// SlackChannel connects over Socket Mode. Slack channel IDs map onto
// the bot's room identifiers directly.
type SlackChannel struct {
	BaseChannel
	config config.SlackConfig
	api    *slack.Client
	socket *socketmode.Client
}

func NewSlackChannel(cfg config.SlackConfig, messageBus *bus.MessageBus) *SlackChannel {
	return &SlackChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		config:      cfg,
	}
}

func (c *SlackChannel) Name() string { return "slack" }

func (c *SlackChannel) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	c.api = slack.New(c.config.BotToken, slack.OptionAppLevelToken(c.config.AppToken))
	c.socket = socketmode.New(c.api)

	c.Bus.Subscribe(c.Name(), func(msg *bus.OutboundMessage) {
		if err := c.Send(ctx, msg); err != nil {
			slog.Warn("slack outbound failed", "room", msg.Room, "error", err)
		}
	})

	go c.handleEvents(ctx)
	go func() {
		if err := c.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
			slog.Error("slack socket stopped", "error", err)
		}
	}()
	return nil
}

func (c *SlackChannel) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.socket.Events:
			if !ok {
				return
			}
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			if evt.Request != nil {
				c.socket.Ack(*evt.Request)
			}

			msgEvent, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
			if !ok || msgEvent.BotID != "" || msgEvent.Text == "" {
				continue
			}
			c.Bus.PublishInbound(&bus.InboundMessage{
				Channel:  c.Name(),
				SenderID: msgEvent.User,
				Room:     msgEvent.Channel,
				TraceID:  uuid.NewString(),
				Content:  msgEvent.Text,
			})
		}
	}
}

func (c *SlackChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	_, _, err := c.api.PostMessageContext(ctx, msg.Room, slack.MsgOptionText(msg.Content, false))
	return err
}

func (c *SlackChannel) Stop() error { return nil }
