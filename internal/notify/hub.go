package notify

import (
	"context"
	"encoding/json"

	"github.com/alebedev/helpboard/internal/common/logger"
	prommetrics "github.com/alebedev/helpboard/internal/common/prometheus"
)

// Subscriber is one connected client. Events arrive on C as marshalled
// messages; the channel is closed when the hub shuts down or the subscriber
// is unregistered.
type Subscriber struct {
	C      chan []byte
	closed bool
}

type HubConfig struct {
	SendBufSize        int
	BroadcastQueueSize int
}

// Hub maintains the set of connected subscribers and fans board events out to
// all of them. Subscriber registration and delivery are serialized by the Run
// loop, so a disconnect during a broadcast cannot corrupt iteration. Publish
// never blocks: events are dropped, counted and logged when the queue or a
// subscriber's buffer is full.
type Hub struct {
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan Event
	subscribers map[*Subscriber]struct{}
	sendBufSize int
	log         *logger.Logger
	done        chan struct{}
}

func NewHub(log *logger.Logger, config HubConfig) *Hub {
	if config.SendBufSize <= 0 {
		config.SendBufSize = 64
	}
	if config.BroadcastQueueSize <= 0 {
		config.BroadcastQueueSize = 256
	}

	return &Hub{
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan Event, config.BroadcastQueueSize),
		subscribers: make(map[*Subscriber]struct{}),
		sendBufSize: config.SendBufSize,
		log:         log,
		done:        make(chan struct{}),
	}
}

// Subscribe registers a new subscriber and returns it. Returns nil after the
// hub has shut down.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{C: make(chan []byte, h.sendBufSize)}
	select {
	case h.register <- sub:
		return sub
	case <-h.done:
		return nil
	}
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish enqueues an event for delivery to all current subscribers. It never
// blocks; when the queue is full the event is dropped and counted.
func (h *Hub) Publish(event Event) {
	prommetrics.EventsPublishedTotal.WithLabelValues(event.Type.String()).Inc()
	select {
	case h.broadcast <- event:
	default:
		prommetrics.EventsDroppedTotal.WithLabelValues("queue_full").Inc()
		h.log.WithFields(nil, logger.Fields{
			"type":   event.Type.String(),
			"action": "hub_queue_full",
		}).Warn("event dropped: broadcast queue full")
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case sub := <-h.register:
			h.subscribers[sub] = struct{}{}
			prommetrics.ActiveSubscribers.Set(float64(len(h.subscribers)))
			h.log.WithFields(nil, logger.Fields{
				"total":  len(h.subscribers),
				"action": "hub_subscribe",
			}).Info("subscriber registered")

		case sub := <-h.unregister:
			h.removeSubscriber(sub)

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithFields(nil, logger.Fields{
			"type":   event.Type.String(),
			"action": "hub_marshal_failed",
		}).Errorf("event marshal failed: %v", err)
		return
	}

	for sub := range h.subscribers {
		select {
		case sub.C <- data:
		default:
			// Slow subscriber; drop rather than stall the board.
			prommetrics.EventsDroppedTotal.WithLabelValues("slow_subscriber").Inc()
		}
	}
}

func (h *Hub) removeSubscriber(sub *Subscriber) {
	if _, ok := h.subscribers[sub]; !ok {
		return
	}

	delete(h.subscribers, sub)
	if !sub.closed {
		sub.closed = true
		close(sub.C)
	}

	prommetrics.ActiveSubscribers.Set(float64(len(h.subscribers)))
	h.log.WithFields(nil, logger.Fields{
		"total":  len(h.subscribers),
		"action": "hub_unsubscribe",
	}).Info("subscriber unregistered")
}

func (h *Hub) shutdown() {
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		if !sub.closed {
			sub.closed = true
			close(sub.C)
		}
	}

	prommetrics.ActiveSubscribers.Set(0)
	h.log.WithFields(nil, logger.Fields{
		"action": "hub_shutdown",
	}).Info("notification hub shutdown completed")
}
