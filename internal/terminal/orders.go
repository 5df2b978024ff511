package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/ordercache"
)

// LoadPage fetches one page and appends it to the display list as is.
// The cursor continues from this page.
func (t *Terminal) LoadPage(ctx context.Context, offset, limit int) (int, error) {
	if limit <= 0 {
		limit = t.opts.PageSize
	}
	orders, err := t.api.ListOrders(ctx, offset, limit)
	if err != nil {
		return 0, t.fail("Failed to load orders", err)
	}
	err = t.do(context.WithoutCancel(ctx), func() {
		t.cache.AppendPage(orders)
		t.cursor.Offset, t.cursor.Limit = offset, limit
		t.cursor.Observe(len(orders))
		t.paged = true
	})
	return len(orders), err
}

// ResetAndLoadFirstPage replaces the display list with page 0. The current
// list stays if the fetch fails.
func (t *Terminal) ResetAndLoadFirstPage(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = t.opts.PageSize
	}
	orders, err := t.api.ListOrders(ctx, 0, limit)
	if err != nil {
		return 0, t.fail("Failed to load orders", err)
	}
	err = t.do(context.WithoutCancel(ctx), func() {
		t.cache.ReplaceAll(orders)
		t.cursor.Limit = limit
		t.cursor.Reset()
		t.cursor.Observe(len(orders))
		t.paged = true
	})
	return len(orders), err
}

// LoadMore appends the next page. Once a page came back short it returns
// ordercache.ErrNoMorePages without a request. A failed fetch leaves the
// cursor where it was.
func (t *Terminal) LoadMore(ctx context.Context) (int, error) {
	var (
		offset, limit int
		more, advance bool
	)
	err := t.do(ctx, func() {
		more = t.cursor.HasMore()
		if !more {
			return
		}
		limit = t.cursor.Limit
		if t.paged {
			offset, advance = t.cursor.Advance(), true
		}
	})
	if err != nil {
		return 0, err
	}
	if !more {
		return 0, ordercache.ErrNoMorePages
	}

	orders, err := t.api.ListOrders(ctx, offset, limit)
	if err != nil {
		if advance {
			_ = t.do(context.WithoutCancel(ctx), func() { t.cursor.Rewind() })
		}
		return 0, t.fail("Failed to load more orders", err)
	}
	err = t.do(context.WithoutCancel(ctx), func() {
		t.cache.AppendPage(orders)
		t.cursor.Observe(len(orders))
		t.paged = true
	})
	return len(orders), err
}

// LoadByDate replaces the display list with the orders created on date
// (YYYY-MM-DD). That listing is not paged, so LoadMore stops.
func (t *Terminal) LoadByDate(ctx context.Context, date string) (int, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return 0, &order.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	orders, err := t.api.ListOrdersByDate(ctx, date)
	if err != nil {
		return 0, t.fail("Failed to load orders for "+date, err)
	}
	err = t.do(context.WithoutCancel(ctx), func() {
		t.cache.ReplaceAll(orders)
		t.cursor.Reset()
		t.cursor.Observe(0)
		t.paged = true
	})
	return len(orders), err
}

type OrderList struct {
	Orders   []order.Order `json:"orders"`
	Expanded []int         `json:"expanded"`
	More     bool          `json:"more"`
}

// Orders returns the cached display list. An empty status keeps every order.
func (t *Terminal) Orders(ctx context.Context, by ordercache.SortOrder, status order.OrderStatus) (OrderList, error) {
	var out OrderList
	err := t.do(ctx, func() {
		all := t.cache.Sorted(by)
		out.Orders = make([]order.Order, 0, len(all))
		for _, o := range all {
			if status == "" || o.Status == status {
				out.Orders = append(out.Orders, o)
			}
		}
		out.Expanded = t.cache.Expanded()
		out.More = t.cursor.HasMore()
	})
	return out, err
}

// GetOrder is a cache lookup; it never goes to the network.
func (t *Terminal) GetOrder(ctx context.Context, id int) (order.Order, bool, error) {
	var (
		o  order.Order
		ok bool
	)
	err := t.do(ctx, func() { o, ok = t.cache.Get(id) })
	return o, ok, err
}

type DetailLine struct {
	order.Item
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderDetail is an order with its items resolved against the menu.
type OrderDetail struct {
	order.Order
	Lines        []DetailLine    `json:"lines"`
	DisplayTotal decimal.Decimal `json:"display_total"`
}

// FetchDetail reads the full order, merges it into the cache and marks it
// expanded. Its items become known to item-level updates.
func (t *Terminal) FetchDetail(ctx context.Context, id int) (OrderDetail, error) {
	o, err := t.api.GetOrder(ctx, id)
	if err != nil {
		return OrderDetail{}, t.fail(fmt.Sprintf("Failed to load order %d", id), err)
	}
	var d OrderDetail
	err = t.do(context.WithoutCancel(ctx), func() {
		t.cache.MergeDetail(*o)
		t.cache.Expand(id)
		d = OrderDetail{
			Order:        o.Clone(),
			Lines:        make([]DetailLine, 0, len(o.Items)),
			DisplayTotal: order.DisplayTotal(o.Items, t.catalog),
		}
		for _, it := range o.Items {
			m := t.catalog.Describe(it.ItemID)
			d.Lines = append(d.Lines, DetailLine{Item: it, Name: m.Name, Price: m.Price})
		}
	})
	return d, err
}

// ToggleExpanded flips the detail view of id and reports the new state.
func (t *Terminal) ToggleExpanded(ctx context.Context, id int) (bool, error) {
	var expanded bool
	err := t.do(ctx, func() { expanded = t.cache.Toggle(id) })
	return expanded, err
}
