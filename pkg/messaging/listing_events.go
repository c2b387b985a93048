package messaging

import (
	"context"
	"fmt"
	"log"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-listings/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

type ListingPublisher struct {
	conn   *amqp.Connection
	prefix string
	origin string
}

func NewListingPublisher(conn *amqp.Connection, prefix, origin string) (*ListingPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	if err := DeclareTopic(ch, prefix, ListingsChanged); err != nil {
		return nil, fmt.Errorf("define %s: %w", ListingsChanged, err)
	}
	return &ListingPublisher{conn: conn, prefix: prefix, origin: origin}, nil
}

func (p *ListingPublisher) PublishChange(ctx context.Context, change types.ListingChange) error {
	if change.IsEmpty() {
		return nil
	}
	return Publish(ctx, p.conn, p.prefix, ListingsChanged, ListingEvent{Origin: p.origin, Change: change})
}

// ListingEventHandler applies events from other instances to the handler and
// calls onApplied after each applied change.
func ListingEventHandler(origin string, handler types.ListingHandler, onApplied func(ctx context.Context)) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		var event ListingEvent
		if err := sonic.Unmarshal(d.Body, &event); err != nil {
			return fmt.Errorf("decode listing event: %w", err)
		}
		if event.Origin == origin || event.Change.IsEmpty() {
			return nil
		}
		ctx := context.Background()
		if err := handler.HandleChange(ctx, event.Change); err != nil {
			return err
		}
		log.Printf("Applied listing change from %s, %d upserted %d deleted", event.Origin, len(event.Change.Upserted), len(event.Change.Deleted))
		if onApplied != nil {
			onApplied(ctx)
		}
		return nil
	}
}

func ListenToListingChanges(conn *amqp.Connection, prefix, origin string, handler types.ListingHandler, onApplied func(ctx context.Context)) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := DeclareTopic(ch, prefix, ListingsChanged); err != nil {
		ch.Close()
		return err
	}
	return ListenToTopic(ch, prefix, ListingsChanged, ListingEventHandler(origin, handler, onApplied))
}
