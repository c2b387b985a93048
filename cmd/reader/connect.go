package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/matst80/slask-listings/pkg/common"
	"github.com/matst80/slask-listings/pkg/messaging"
	"github.com/matst80/slask-listings/pkg/tracking"
	"github.com/matst80/slask-listings/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

func instanceName() string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "reader"
}

// ConnectAmqp publishes local writes and applies writes made on other
// replicas.
func (a *app) ConnectAmqp(amqpUrl string) {
	conn, err := amqp.DialConfig(amqpUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	a.conn = conn
	origin := instanceName()

	publisher, err := messaging.NewListingPublisher(conn, a.cfg.Country, origin)
	if err != nil {
		log.Fatalf("Failed to define listing topic: %v", err)
	}
	a.changes = common.NewQueueHandler(func(changes []types.ListingChange) {
		change := types.MergeChanges(changes...)
		if err := publisher.PublishChange(context.Background(), change); err != nil {
			log.Printf("Failed to publish %d listing changes: %v", len(changes), err)
		}
	}, 100, 500*time.Millisecond)

	err = messaging.ListenToListingChanges(conn, a.cfg.Country, origin, a.store, a.invalidate)
	if err != nil {
		log.Fatalf("Failed to listen to %s topic: %v", messaging.ListingsChanged, err)
	}
	log.Printf("Listening for listing changes as %s", origin)

	tracker, err := tracking.NewRabbitTracking(conn, a.cfg.Country)
	if err != nil {
		log.Printf("Failed to set up tracking: %v", err)
		return
	}
	a.tracker = tracker
}
