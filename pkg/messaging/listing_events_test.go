package messaging

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-listings/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

type changeRecorder struct {
	changes []types.ListingChange
}

func (r *changeRecorder) HandleChange(_ context.Context, change types.ListingChange) error {
	r.changes = append(r.changes, change)
	return nil
}

func delivery(t *testing.T, event ListingEvent) amqp.Delivery {
	body, err := sonic.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{Body: body}
}

func TestListingEventHandler(t *testing.T) {
	rec := &changeRecorder{}
	applied := 0
	handle := ListingEventHandler("self", rec, func(context.Context) { applied++ })

	change := types.ListingChange{Deleted: []types.ListingId{4}}
	if err := handle(delivery(t, ListingEvent{Origin: "other", Change: change})); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := handle(delivery(t, ListingEvent{Origin: "self", Change: change})); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rec.changes) != 1 || applied != 1 {
		t.Errorf("Expected one applied change, got %d (%d callbacks)", len(rec.changes), applied)
	}
	if rec.changes[0].Deleted[0] != 4 {
		t.Errorf("Expected delete of 4, got %+v", rec.changes[0])
	}
	if err := handle(amqp.Delivery{Body: []byte("not json")}); err == nil {
		t.Errorf("Expected decode error")
	}
}

func TestTopicName(t *testing.T) {
	if name := exchangeName("se", ListingsChanged); name != "se_listing_changed" {
		t.Errorf("Expected se_listing_changed, got %s", name)
	}
}

type exchangeRecorder struct {
	names   []string
	kinds   []string
	durable bool
}

func (r *exchangeRecorder) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	r.names = append(r.names, name)
	r.kinds = append(r.kinds, kind)
	r.durable = durable
	return nil
}

func TestDeclareTopicOnlyDeclaresExchange(t *testing.T) {
	rec := &exchangeRecorder{}
	if err := DeclareTopic(rec, "se", ListingsChanged); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rec.names) != 1 || rec.names[0] != "se_listing_changed" {
		t.Fatalf("Expected one exchange se_listing_changed, got %v", rec.names)
	}
	if rec.kinds[0] != amqp.ExchangeTopic || !rec.durable {
		t.Errorf("Expected durable topic exchange, got %s durable=%v", rec.kinds[0], rec.durable)
	}
}

func TestNewPublishing(t *testing.T) {
	event := ListingEvent{Origin: "a", Change: types.ListingChange{Deleted: []types.ListingId{7}}}
	msg, err := newPublishing(event)
	if err != nil {
		t.Fatal(err)
	}
	if msg.ContentType != "application/json" || msg.MessageId == "" {
		t.Errorf("Expected json message with id, got %q %q", msg.ContentType, msg.MessageId)
	}
	var decoded ListingEvent
	if err := sonic.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Origin != "a" || decoded.Change.Deleted[0] != 7 {
		t.Errorf("Unexpected body %s", msg.Body)
	}
}
