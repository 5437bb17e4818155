package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const consumerTag = "cyoa-story-worker"

// Consumer читает задачи из RabbitMQ и передает их Handler по одной.
type Consumer struct {
	logger  *zap.Logger
	conn    *amqp.Connection
	queue   string
	handler Handler
}

func NewConsumer(logger *zap.Logger, conn *amqp.Connection, queue string, handler Handler) *Consumer {
	return &Consumer{
		logger:  logger.Named("JobConsumer"),
		conn:    conn,
		queue:   queue,
		handler: handler,
	}
}

// Start блокируется до отмены ctx или закрытия канала доставки.
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}
	// Генерация длится минутами, поэтому берем по одному сообщению.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queue,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	c.logger.Info("Consumer started", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer stopping")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery подтверждает сообщение после обработки. Задачи не перезапускаются:
// при ошибке сообщение отклоняется без возврата в очередь.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	log := c.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	var msg JobMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.JobID == uuid.Nil {
		jobMessagesRejected.Inc()
		log.Error("Invalid job message", zap.ByteString("body", d.Body), zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}

	log = log.With(zap.String("job_id", msg.JobID.String()))
	if err := c.handler.Run(ctx, msg.JobID); err != nil {
		log.Warn("Job finished with error", zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Failed to ack message", zap.Error(ackErr))
	}
}
