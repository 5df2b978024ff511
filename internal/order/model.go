package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/menu"
)

type OrderStatus string

const (
	StatusOpening  OrderStatus = "opening"
	StatusClosed   OrderStatus = "closed"
	StatusCanceled OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpening, StatusClosed, StatusCanceled:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemReceived  ItemStatus = "received"
	ItemCompleted ItemStatus = "completed"
	ItemCanceled  ItemStatus = "canceled"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemReceived, ItemCompleted, ItemCanceled:
		return true
	}
	return false
}

type Order struct {
	ID          int             `json:"id"`
	TableID     int             `json:"table_id"`
	ServerID    int             `json:"server_id"`
	Status      OrderStatus     `json:"status"`
	IsPaid      bool            `json:"is_paid"`
	TotalAmount decimal.Decimal `json:"total_amount"` // server computed
	CreatedAt   Timestamp       `json:"created_at"`
	ClosedAt    *Timestamp      `json:"closed_at"`
	Items       []Item          `json:"order_items"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	cp := o
	if o.Items != nil {
		cp.Items = append([]Item(nil), o.Items...)
	}
	if o.ClosedAt != nil {
		t := *o.ClosedAt
		cp.ClosedAt = &t
	}
	return cp
}

type Item struct {
	ID int `json:"id"`
	// list payloads from the backend omit order_id
	OrderID  int        `json:"order_id,omitempty"`
	ItemID   int        `json:"item_id"`
	Quantity int        `json:"quantity"`
	Note     string     `json:"note"`
	Status   ItemStatus `json:"status"`
}

// Describer resolves a menu item for display; *menu.Catalog satisfies it.
type Describer interface {
	Describe(id int) menu.MenuItem
}

// DisplayTotal sums price*quantity for display only. Unknown menu items count as 0.
func DisplayTotal(items []Item, d Describer) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		price := d.Describe(it.ItemID).Price
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO form the backend emits.
type Timestamp struct{ time.Time }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("order: unrecognised timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
