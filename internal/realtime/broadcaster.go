// Package realtime publishes structured events to connected subscribers.
// Delivery is fire-and-forget: at-most-once, no retry, no persistence of
// missed events. A publish failure is logged and counted, never returned.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soundrift/soundrift/pkg/logger"
	"github.com/soundrift/soundrift/pkg/metrics"
)

// Broadcaster fans an event out to every currently connected subscriber.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Event is the wire shape published on the channel.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

const publishTimeout = 2 * time.Second

// RedisBroadcaster publishes events on a Redis pub/sub channel; the realtime
// edge (socket gateways) subscribes and forwards to clients.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
}

func NewRedisBroadcaster(client *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel}
}

func (b *RedisBroadcaster) Broadcast(event string, payload interface{}) {
	body, err := json.Marshal(Event{Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		logger.Errorf("realtime: marshal %s event: %v", event, err)
		metrics.BroadcastErrors.Inc()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		logger.Warnf("realtime: publish %s event: %v", event, err)
		metrics.BroadcastErrors.Inc()
		return
	}
	metrics.BroadcastsSent.Inc()
}

// NopBroadcaster drops every event. Used when Redis is not configured.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(event string, payload interface{}) {
	logger.Debugf("realtime: dropping %s event (no broadcaster configured)", event)
}
