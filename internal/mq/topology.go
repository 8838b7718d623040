package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeStages — единственный обменник событий этапов пайплайна.
const ExchangeStages Exchange = "smartspim.stages"

// Routing keys.
const (
	RoutingKeyRunSubmitted   RoutingKey = "run.submitted"
	RoutingKeyStageCompleted RoutingKey = "stage.completed"
)

// SetupTopology объявляет обменник событий этапов.
//
// Очереди объявляют подписчики: диспетчер только публикует и
// не знает, кто его слушает.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeStages), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeStages, err)
		}
		return nil
	})
}
