package channels

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/config"
)

// KafkaChannel bridges a messenger client over two Kafka topics: the
// client publishes raw chat events on the inbound topic and consumes
// bot responses from the outbound topic.
type KafkaChannel struct {
	BaseChannel
	config config.KafkaConfig
	reader *kafka.Reader
	writer *kafka.Writer
}

// kafkaInbound is the wire format the messenger bridge produces.
type kafkaInbound struct {
	UserID  string `json:"user_id"`
	Room    string `json:"room"`
	Message string `json:"message"`
}

// kafkaOutbound is the wire format the messenger bridge consumes.
type kafkaOutbound struct {
	Room    string `json:"room"`
	Content string `json:"content"`
	TraceID string `json:"trace_id"`
}

func NewKafkaChannel(cfg config.KafkaConfig, messageBus *bus.MessageBus) *KafkaChannel {
	return &KafkaChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		config:      cfg,
	}
}

func (c *KafkaChannel) Name() string { return "kafka" }

func (c *KafkaChannel) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.config.Brokers,
		GroupID:  c.config.ConsumerGroup,
		Topic:    c.config.InboundTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	c.writer = &kafka.Writer{
		Addr:         kafka.TCP(c.config.Brokers...),
		Topic:        c.config.OutboundTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	c.Bus.Subscribe(c.Name(), func(msg *bus.OutboundMessage) {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := c.Send(sendCtx, msg); err != nil {
			slog.Warn("kafka outbound failed", "room", msg.Room, "error", err)
		}
	})

	go c.consume(ctx)
	return nil
}

func (c *KafkaChannel) consume(ctx context.Context) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Warn("kafka read failed", "error", err)
			continue
		}

		var in kafkaInbound
		if err := json.Unmarshal(m.Value, &in); err != nil {
			slog.Warn("kafka inbound decode failed", "error", err)
			continue
		}
		if in.UserID == "" || in.Room == "" || in.Message == "" {
			continue
		}

		c.Bus.PublishInbound(&bus.InboundMessage{
			Channel:   c.Name(),
			SenderID:  in.UserID,
			Room:      in.Room,
			TraceID:   uuid.NewString(),
			Content:   in.Message,
			Timestamp: m.Time,
		})
	}
}

func (c *KafkaChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	value, err := json.Marshal(kafkaOutbound{
		Room:    msg.Room,
		Content: msg.Content,
		TraceID: msg.TraceID,
	})
	if err != nil {
		return err
	}
	return c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Room),
		Value: value,
	})
}

func (c *KafkaChannel) Stop() error {
	var errs []error
	if c.reader != nil {
		errs = append(errs, c.reader.Close())
	}
	if c.writer != nil {
		errs = append(errs, c.writer.Close())
	}
	return errors.Join(errs...)
}
