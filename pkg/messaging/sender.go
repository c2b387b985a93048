package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeDeclarer is the part of *amqp.Channel needed to set up a topic.
type ExchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

// exchangeName is both the exchange and the routing key of a topic.
func exchangeName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// DeclareTopic declares the durable topic exchange for topic. Queues belong
// to the consumers, see DeclareBindAndConsume.
func DeclareTopic(ch ExchangeDeclarer, prefix string, topic ChangeTopic) error {
	name := exchangeName(prefix, topic)
	if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

func newPublishing(data any) (amqp.Publishing, error) {
	body, err := sonic.Marshal(data)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.NewString(),
		Timestamp:   time.Now(),
		Body:        body,
	}, nil
}

// Publish sends data as JSON on a short lived channel.
func Publish[V any](ctx context.Context, conn *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	msg, err := newPublishing(data)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := exchangeName(prefix, topic)
	return ch.PublishWithContext(ctx, name, name, false, false, msg)
}
