package terminal

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/basket"
	"github.com/MikeMC777/ordenes-pos/internal/order"
)

type BasketView struct {
	TableID int             `json:"table_id"`
	Lines   []basket.Line   `json:"lines"`
	Total   decimal.Decimal `json:"total"`
}

func (t *Terminal) Basket(ctx context.Context) (BasketView, error) {
	var v BasketView
	err := t.do(ctx, func() {
		v = BasketView{TableID: t.tableID, Lines: t.basket.Lines(), Total: t.basket.Total()}
		if v.Lines == nil {
			v.Lines = []basket.Line{}
		}
	})
	return v, err
}

// AddToBasket reports whether a line was added; see basket.Basket.Add.
func (t *Terminal) AddToBasket(ctx context.Context, menuItemID, quantity int, note string) (bool, error) {
	var added bool
	err := t.do(ctx, func() { added = t.basket.Add(menuItemID, quantity, note) })
	return added, err
}

func (t *Terminal) RemoveFromBasket(ctx context.Context, index int) error {
	var rerr error
	if err := t.do(ctx, func() { rerr = t.basket.Remove(index) }); err != nil {
		return err
	}
	return rerr
}

// SubmitOrder sends the basket for the selected table. Missing table or empty
// basket fail before any request. On success the basket and the selection are
// cleared; on failure both are kept for a retry.
func (t *Terminal) SubmitOrder(ctx context.Context) (*order.Order, error) {
	var (
		req  order.CreateOrderRequest
		verr error
	)
	err := t.do(ctx, func() {
		switch {
		case t.tableID == 0:
			verr = &order.ValidationError{Field: "table_id", Reason: "select a table first"}
		case t.basket.IsEmpty():
			verr = &order.ValidationError{Field: "order_items", Reason: "add at least one item to the order"}
		case t.opts.SubmitGuard && t.submitting:
			verr = ErrSubmitInProgress
		default:
			t.submitting = true
			req = order.CreateOrderRequest{TableID: t.tableID, Items: basket.OrderItems(t.basket.Lines())}
		}
	})
	if err != nil {
		return nil, err
	}
	if verr != nil {
		t.notify.Notify(LevelError, verr.Error())
		return nil, verr
	}

	created, err := t.api.CreateOrder(ctx, req)

	// the outcome must land even if the caller has gone
	settle := context.WithoutCancel(ctx)
	if derr := t.do(settle, func() {
		t.submitting = false
		if err == nil {
			// lines added while the request was in flight are dropped too
			t.basket.Clear()
			t.tableID = 0
		}
	}); derr != nil {
		return nil, derr
	}
	if err != nil {
		return nil, t.fail("Failed to create order", err)
	}
	t.notify.Notify(LevelSuccess, fmt.Sprintf("Order %d created successfully", created.ID))
	return created, nil
}
