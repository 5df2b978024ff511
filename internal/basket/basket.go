// Package basket collects menu items before they are submitted as an order.
// A Basket is not safe for concurrent use; the terminal owns it.
package basket

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/menu"
	"github.com/MikeMC777/ordenes-pos/internal/order"
)

var ErrLineOutOfRange = errors.New("basket line out of range")

type ItemLookup interface {
	Lookup(id int) (menu.MenuItem, bool)
}

// Line snapshots the menu item as it was when added.
type Line struct {
	ItemID   int             `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
	Note     string          `json:"note"`
}

type Basket struct {
	lookup ItemLookup
	lines  []Line
}

func New(lookup ItemLookup) *Basket {
	return &Basket{lookup: lookup}
}

// Add appends a line and reports whether it did. Unknown or unavailable items
// and quantities below 1 are ignored. Adding an item twice yields two lines.
func (b *Basket) Add(menuItemID, quantity int, note string) bool {
	if quantity <= 0 || b.lookup == nil {
		return false
	}
	it, ok := b.lookup.Lookup(menuItemID)
	if !ok || !it.IsAvailable {
		return false
	}
	b.lines = append(b.lines, Line{
		ItemID:   it.ID,
		Name:     it.Name,
		Price:    it.Price,
		Image:    it.Image,
		Quantity: quantity,
		Note:     note,
	})
	return true
}

func (b *Basket) Remove(index int) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	b.lines = append(b.lines[:index], b.lines[index+1:]...)
	return nil
}

func (b *Basket) Clear() { b.lines = nil }

func (b *Basket) Len() int { return len(b.lines) }

func (b *Basket) IsEmpty() bool { return len(b.lines) == 0 }

func (b *Basket) Lines() []Line { return append([]Line(nil), b.lines...) }

// Total is for display; the server computes the billed amount.
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// OrderItems converts lines to the create/extend payload, keeping basket order.
func OrderItems(lines []Line) []order.CreateOrderItem {
	out := make([]order.CreateOrderItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, order.CreateOrderItem{ItemID: l.ItemID, Quantity: l.Quantity, Note: l.Note})
	}
	return out
}
