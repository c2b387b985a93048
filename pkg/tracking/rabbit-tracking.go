package tracking

import (
	"context"
	"log"

	"github.com/matst80/slask-listings/pkg/messaging"
	"github.com/matst80/slask-listings/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

const trackingTopic messaging.ChangeTopic = "tracking"

type RabbitTracking struct {
	country    string
	connection *amqp.Connection
}

func NewRabbitTracking(conn *amqp.Connection, country string) (*RabbitTracking, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	if err := messaging.DeclareTopic(ch, "global", trackingTopic); err != nil {
		return nil, err
	}
	return &RabbitTracking{connection: conn, country: country}, nil
}

type BaseEvent struct {
	Country string `json:"country,omitempty"`
	Context string `json:"context,omitempty"`
	Event   uint16 `json:"event"`
}

const facetQueryEvent = 1

// FacetQueryEvent is what analytics sees of one facet request.
type FacetQueryEvent struct {
	*BaseEvent
	Query           string `json:"query"`
	NumberOfResults int    `json:"noi"`
	Filtered        bool   `json:"filtered"`
	Referer         string `json:"referer,omitempty"`
	Ip              string `json:"ip,omitempty"`
	UserAgent       string `json:"user_agent,omitempty"`
}

func NewFacetQueryEvent(country string, info RequestInfo, sel *types.FilterSelection, snapshot *types.FacetSnapshot) FacetQueryEvent {
	return FacetQueryEvent{
		BaseEvent:       &BaseEvent{Event: facetQueryEvent, Country: country, Context: "listings"},
		Query:           sel.CacheKey(),
		NumberOfResults: snapshot.TotalCount,
		Filtered:        snapshot.HasAnyNonDefaultFilter,
		Referer:         info.Referer,
		Ip:              info.Ip,
		UserAgent:       info.UserAgent,
	}
}

func (rt *RabbitTracking) TrackFacetQuery(info RequestInfo, sel *types.FilterSelection, snapshot *types.FacetSnapshot) {
	err := messaging.Publish(context.Background(), rt.connection, "global", trackingTopic, NewFacetQueryEvent(rt.country, info, sel, snapshot))
	if err != nil {
		log.Println("Error sending facet query event: ", err)
	}
}
