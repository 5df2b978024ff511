package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/ordercache"
	"github.com/MikeMC777/ordenes-pos/internal/push"
)

const kindRefetch = "order_refetched"

// SetOrderStatus, SetPaidFlag and ExtendOrder send one request each and do not
// apply the response. The cache catches up through the push channel, or
// through a re-fetch when RefetchAfterMutation is set.

func (t *Terminal) SetOrderStatus(ctx context.Context, id int, status order.OrderStatus) error {
	if !status.Valid() {
		return &order.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	s := status
	if _, err := t.api.UpdateOrder(ctx, id, order.UpdateOrderRequest{Status: &s}); err != nil {
		return t.fail("Failed to update order status", err)
	}
	t.notify.Notify(LevelSuccess, fmt.Sprintf("Order %d is now %s", id, status))
	t.afterMutation(ctx, id)
	return nil
}

func (t *Terminal) SetPaidFlag(ctx context.Context, id int, paid bool) error {
	p := paid
	if _, err := t.api.UpdateOrder(ctx, id, order.UpdateOrderRequest{IsPaid: &p}); err != nil {
		return t.fail("Failed to update payment status", err)
	}
	msg := fmt.Sprintf("Order %d marked as paid", id)
	if !paid {
		msg = fmt.Sprintf("Order %d marked as unpaid", id)
	}
	t.notify.Notify(LevelSuccess, msg)
	t.afterMutation(ctx, id)
	return nil
}

func (t *Terminal) ExtendOrder(ctx context.Context, id int, items []order.CreateOrderItem) error {
	if len(items) == 0 {
		return &order.ValidationError{Field: "order_items", Reason: "add at least one item"}
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return &order.ValidationError{Field: "quantity", Reason: fmt.Sprintf("item %d: quantity must be at least 1", it.ItemID)}
		}
	}
	if _, err := t.api.ExtendOrder(ctx, id, items); err != nil {
		return t.fail("Failed to extend order", err)
	}
	t.notify.Notify(LevelSuccess, fmt.Sprintf("Order %d extended", id))
	t.afterMutation(ctx, id)
	return nil
}

// afterMutation re-reads the order when configured to. The mutation already
// succeeded, so a failed re-fetch is only reported.
func (t *Terminal) afterMutation(ctx context.Context, id int) {
	if !t.opts.RefetchAfterMutation {
		return
	}
	o, err := t.api.GetOrder(ctx, id)
	if err != nil {
		_ = t.fail(fmt.Sprintf("Failed to refresh order %d", id), err)
		return
	}
	if err := t.do(context.WithoutCancel(ctx), func() { t.cache.ApplyOrderUpdate(*o) }); err != nil {
		return
	}
	t.record(ctx, kindRefetch, o.ID, 0, o)
}

// HandleEvent applies a push event through the cache. It is a push.Handler.
// Item updates for orders the cache does not hold are dropped quietly.
func (t *Terminal) HandleEvent(ev push.Event) {
	var (
		orderID, itemID int
		payload         any
		applied         bool
	)
	err := t.do(context.Background(), func() {
		switch ev.Type {
		case push.OrderUpdated:
			if ev.Order == nil {
				return
			}
			t.cache.ApplyOrderUpdate(*ev.Order)
			orderID, payload, applied = ev.Order.ID, ev.Order, true
		case push.OrderItemUpdated:
			if ev.Item == nil {
				return
			}
			id, err := t.cache.ApplyOrderItemUpdate(*ev.Item)
			if errors.Is(err, ordercache.ErrReconciliationMiss) {
				log.Printf("[terminal] debug: item %d update dropped, owning order not cached", ev.Item.ID)
				return
			}
			orderID, itemID, payload, applied = id, ev.Item.ID, ev.Item, true
		}
	})
	if err != nil || !applied {
		return
	}
	t.record(context.Background(), string(ev.Type), orderID, itemID, payload)
}

// record appends to the journal, best effort.
func (t *Terminal) record(ctx context.Context, kind string, orderID, itemID int, v any) {
	if t.journal == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[terminal] journal encode %s for order %d: %v", kind, orderID, err)
		return
	}
	c := order.Change{OrderID: orderID, ItemID: itemID, Kind: kind, Payload: raw}
	if err := t.journal.Append(context.WithoutCancel(ctx), c); err != nil {
		log.Printf("[terminal] journal append %s for order %d: %v", kind, orderID, err)
	}
}

// Changes lists journaled reconciliations for one order, newest first.
func (t *Terminal) Changes(ctx context.Context, orderID, limit, offset int) ([]order.Change, error) {
	if t.journal == nil {
		return nil, order.ErrJournalDisabled
	}
	return t.journal.ListByOrder(ctx, orderID, limit, offset)
}
