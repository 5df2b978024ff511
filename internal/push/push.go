// Package push models the server-initiated update channel. A Source delivers
// order and order-item updates to a Handler; delivery order and at-least-once
// are not guaranteed by any implementation.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MikeMC777/ordenes-pos/internal/order"
)

type EventType string

const (
	OrderUpdated     EventType = "order_updated"
	OrderItemUpdated EventType = "order_item_updated"
)

var ErrUnknownEvent = errors.New("push: unknown event")

// Event carries a full Order or a full Item, depending on Type.
type Event struct {
	Type  EventType
	Order *order.Order
	Item  *order.Item
}

type Handler func(Event)

type Source interface {
	// Subscribe blocks until ctx ends or the transport fails.
	Subscribe(ctx context.Context, h Handler) error
}

// envelope is the wire shape: {"event": "...", "data": {...}}.
type envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func Decode(b []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Event{}, fmt.Errorf("push: decode envelope: %w", err)
	}
	switch env.Event {
	case OrderUpdated:
		var o order.Order
		if err := json.Unmarshal(env.Data, &o); err != nil {
			return Event{}, fmt.Errorf("push: decode order: %w", err)
		}
		return Event{Type: OrderUpdated, Order: &o}, nil
	case OrderItemUpdated:
		var it order.Item
		if err := json.Unmarshal(env.Data, &it); err != nil {
			return Event{}, fmt.Errorf("push: decode order item: %w", err)
		}
		return Event{Type: OrderItemUpdated, Item: &it}, nil
	}
	return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
}

func Encode(ev Event) ([]byte, error) {
	var data any
	switch ev.Type {
	case OrderUpdated:
		if ev.Order == nil {
			return nil, errors.New("push: order_updated without order")
		}
		data = ev.Order
	case OrderItemUpdated:
		if ev.Item == nil {
			return nil, errors.New("push: order_item_updated without item")
		}
		data = ev.Item
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: ev.Type, Data: raw})
}

// Run keeps src subscribed until ctx ends, waiting backoff between attempts.
// A 401 from the transport stops it: reconnecting cannot fix an invalid session.
func Run(ctx context.Context, src Source, h Handler, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	for {
		err := src.Subscribe(ctx, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, order.ErrUnauthorized) {
			return err
		}
		log.Printf("[push] subscription ended: %v; retrying in %s", err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
