package ordercache

import (
	"errors"

	"github.com/MikeMC777/ordenes-pos/internal/order"
)

// ErrReconciliationMiss means an item update named no cached order. Callers drop it.
var ErrReconciliationMiss = errors.New("order item not in cache")

// ApplyOrderUpdate upserts o: an id not on the display list goes to its end,
// a listed one is replaced where it stands. Applying it twice is a no-op.
func (c *Cache) ApplyOrderUpdate(o order.Order) {
	if _, ok := c.listed[o.ID]; !ok {
		c.list(o.ID)
	}
	c.store(o)
}

// ApplyOrderItemUpdate replaces one item inside its owning order and leaves its
// siblings alone. There is no fetch on miss.
func (c *Cache) ApplyOrderItemUpdate(it order.Item) (orderID int, err error) {
	orderID, ok := c.owner[it.ID]
	if !ok {
		return 0, ErrReconciliationMiss
	}
	o, ok := c.byID[orderID]
	if !ok {
		return 0, ErrReconciliationMiss
	}
	o = o.Clone()
	for k := range o.Items {
		if o.Items[k].ID != it.ID {
			continue
		}
		if it.OrderID == 0 {
			it.OrderID = o.Items[k].OrderID
		}
		o.Items[k] = it
		c.byID[orderID] = o
		return orderID, nil
	}
	return 0, ErrReconciliationMiss
}
