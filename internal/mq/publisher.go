package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunSubmitted   MessageType = "run.submitted"
	MessageTypeStageCompleted MessageType = "stage.completed"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RunSubmittedPayload — payload события об отправленном запуске.
type RunSubmittedPayload struct {
	Dataset      string `json:"dataset"`
	Channel      string `json:"channel"`
	RunID        string `json:"run_id"`
	OutputPrefix string `json:"output_prefix"`
}

// StageCompletedPayload — payload события о завершении режима.
type StageCompletedPayload struct {
	Dataset   string `json:"dataset"`
	Mode      string `json:"mode"` // dispatch или clean
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped,omitempty"`
}

// Publisher публикует события этапа в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в обменник событий этапов.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeStages), // exchange
			string(routingKey),     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeStages, routingKey, err)
		}

		p.logger.Debug("published message",
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishRunSubmitted публикует событие об успешно отправленном запуске.
func (p *Publisher) PublishRunSubmitted(ctx context.Context, payload RunSubmittedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeRunSubmitted,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, RoutingKeyRunSubmitted, msg)
}

// PublishStageCompleted публикует событие о завершении режима.
func (p *Publisher) PublishStageCompleted(ctx context.Context, payload StageCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeStageCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, RoutingKeyStageCompleted, msg)
}
