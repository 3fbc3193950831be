package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"SafeHer/config"
)

// 交换机与队列拓扑
const (
	DirectExchange  = "safeher.direct"
	DelayedExchange = "safeher.delayed"

	AlertDispatchQueue      = "alert.dispatch"
	AlertDispatchRoutingKey = "alert.dispatch"

	JourneySweepQueue      = "journey.sweep"
	JourneySweepRoutingKey = "journey.sweep"
)

var (
	conn    *amqp.Connection
	mqOnce  sync.Once
	initErr error
)

func Init() error {
	mqOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		conn, initErr = amqp.Dial(url)
		if initErr != nil {
			return
		}

		initErr = declareTopology()
	})

	return initErr
}

// declareTopology 声明交换机、队列与绑定
// DelayedExchange 依赖 rabbitmq-delayed-message-exchange 插件
func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		DirectExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare direct exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		DelayedExchange,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		amqp.Table{"x-delayed-type": "direct"},
	); err != nil {
		return fmt.Errorf("failed to declare delayed exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		AlertDispatchQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", AlertDispatchQueue, err)
	}

	if err := ch.QueueBind(AlertDispatchQueue, AlertDispatchRoutingKey, DirectExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", AlertDispatchQueue, err)
	}

	if err := ch.QueueBind(AlertDispatchQueue, AlertDispatchRoutingKey, DelayedExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to delayed exchange: %w", AlertDispatchQueue, err)
	}

	if _, err := ch.QueueDeclare(
		JourneySweepQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", JourneySweepQueue, err)
	}

	if err := ch.QueueBind(JourneySweepQueue, JourneySweepRoutingKey, DelayedExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to delayed exchange: %w", JourneySweepQueue, err)
	}

	return nil
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	closePublisherChannel()

	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
