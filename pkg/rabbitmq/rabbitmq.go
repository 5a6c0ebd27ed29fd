package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// EventsQueue is the durable queue carrying chat domain events.
const EventsQueue = "chat_events"

// Event types published after successful mutations.
const (
	UserRegistered    = "user.registered"
	UserDeleted       = "user.deleted"
	ChatCreated       = "chat.created"
	ChatRenamed       = "chat.renamed"
	ChatMemberAdded   = "chat.member_added"
	ChatMemberRemoved = "chat.member_removed"
	MessageCreated    = "message.created"
	MessageUpdated    = "message.updated"
	MessageDeleted    = "message.deleted"
)

// Event is the JSON body of every published message.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	ActorID    uint      `json:"actorId"`
	ChatID     uint      `json:"chatId,omitempty"`
	MessageID  uint      `json:"messageId,omitempty"`
	UserID     uint      `json:"userId,omitempty"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // guards channel writes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err = declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	slog.Info("RabbitMQ client connected", "queue", EventsQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		EventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", EventsQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Encode marshals an event, assigning an ID and timestamp when missing.
func Encode(event *Event) ([]byte, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}
	return body, nil
}

// Decode parses the body of a delivered event.
func Decode(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return Event{}, errors.New("event without type")
	}
	return event, nil
}

// PublishEvent publishes a persistent event to the events queue.
func (c *Client) PublishEvent(event Event) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	body, err := Encode(&event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",          // default exchange
		EventsQueue, // routing key: the queue name
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	slog.Debug("event published", "type", event.Type, "id", event.ID)
	return nil
}

// ConsumeEvents starts a goroutine delivering events to handler.
// A handler error nacks the delivery without requeue so a poison message
// cannot loop forever.
func (c *Client) ConsumeEvents(handler func(Event) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	c.mu.Lock()
	queue, err := declareQueue(c.channel)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := deliver(msg.Body, handler); err != nil {
				slog.Warn("event rejected", "tag", msg.DeliveryTag, "error", err)
				if nackErr := msg.Nack(false, false); nackErr != nil {
					slog.Error("failed to nack event", "tag", msg.DeliveryTag, "error", nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				slog.Error("failed to ack event", "tag", msg.DeliveryTag, "error", ackErr)
			}
		}
	}()

	return nil
}

func deliver(body []byte, handler func(Event) error) error {
	event, err := Decode(body)
	if err != nil {
		return err
	}
	return handler(event)
}

// LogEvent is the audit handler used by the server: it records each event.
func LogEvent(event Event) error {
	slog.Info("chat event",
		"type", event.Type,
		"id", event.ID,
		"actor", event.ActorID,
		"chat", event.ChatID,
		"message", event.MessageID,
		"user", event.UserID,
		"at", event.OccurredAt.Format(time.RFC3339),
	)
	return nil
}
