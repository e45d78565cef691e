package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"assetbook/pkg/logger"
	"assetbook/pkg/model"
)

type assetEvent struct {
	assetID string
	change  model.UsageChange
}

// Notifier fans committed usage changes out to the hub, and to the Kafka
// change feed when one is configured. Dispatch runs on a background
// goroutine: Notify only enqueues and the caller's request path never
// blocks on subscriber I/O. Delivery is at-most-once; a full queue drops
// the event with a warning.
type Notifier struct {
	hub    *Hub
	feed   *ChangeFeed
	events chan assetEvent
	log    *logger.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewNotifier(hub *Hub, feed *ChangeFeed, buffer int, log *logger.Logger) *Notifier {
	n := &Notifier{
		hub:    hub,
		feed:   feed,
		events: make(chan assetEvent, buffer),
		log:    log,
		done:   make(chan struct{}),
	}
	go n.dispatch()
	return n
}

// Notify hands the event to the dispatcher. It never blocks and never
// reports failure: notification outcomes must not affect the mutation that
// produced them.
func (n *Notifier) Notify(assetID string, change model.UsageChange) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		n.log.Warn("Notifier stopped, dropping event", "asset_id", assetID, "action", change.Action)
		return
	}

	select {
	case n.events <- assetEvent{assetID: assetID, change: change}:
	default:
		n.log.Warn("Notification queue full, dropping event", "asset_id", assetID, "action", change.Action)
	}
}

func (n *Notifier) dispatch() {
	defer close(n.done)

	for ev := range n.events {
		payload, err := json.Marshal(ev.change)
		if err != nil {
			n.log.Error("Failed to encode change event", "asset_id", ev.assetID, "error", err)
			continue
		}

		n.hub.Broadcast(ev.assetID, payload)

		if n.feed != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := n.feed.Publish(ctx, ev.assetID, ev.change); err != nil {
				n.log.Warn("Failed to publish to change feed", "asset_id", ev.assetID, "error", err)
			}
			cancel()
		}
	}
}

// Stop drains in-flight events and shuts the dispatcher down.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.events)
	n.mu.Unlock()

	<-n.done
}
