package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// JobMessage - тело сообщения в очереди задач.
type JobMessage struct {
	JobID uuid.UUID `json:"job_id"`
}

const publishTimeout = 5 * time.Second

// declareQueue объявляет очередь с одинаковыми параметрами для издателя и потребителя.
func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", name, err)
	}
	return nil
}

// Compile-time check to ensure implementation satisfies the interface.
var _ Dispatcher = (*AMQPDispatcher)(nil)

// AMQPDispatcher публикует задачи в RabbitMQ для отдельного воркера.
type AMQPDispatcher struct {
	logger  *zap.Logger
	channel *amqp.Channel
	queue   string
}

func NewAMQPDispatcher(logger *zap.Logger, conn *amqp.Connection, queue string) (*AMQPDispatcher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		ch.Close()
		return nil, err
	}
	return &AMQPDispatcher{
		logger:  logger.Named("AMQPDispatcher"),
		channel: ch,
		queue:   queue,
	}, nil
}

func (d *AMQPDispatcher) Dispatch(ctx context.Context, jobID uuid.UUID) error {
	body, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = d.channel.PublishWithContext(pubCtx,
		"",      // exchange
		d.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    jobID.String(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		d.logger.Error("Failed to publish job", zap.String("job_id", jobID.String()), zap.Error(err))
		return fmt.Errorf("failed to publish job %s: %w", jobID, err)
	}
	d.logger.Debug("Job published", zap.String("job_id", jobID.String()), zap.String("queue", d.queue))
	return nil
}

func (d *AMQPDispatcher) Close() error {
	return d.channel.Close()
}
