// Package menu holds the menu and table data the terminal fetches at startup.
package menu

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// NUMERIC on the backend, decimal here to avoid rounding errors
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
	Image       string          `json:"image,omitempty"`
}

type Table struct {
	ID          int  `json:"id"`
	IsAvailable bool `json:"is_available"`
}

// Placeholder stands in for menu items the catalog does not know.
var Placeholder = MenuItem{Name: "Unknown item", Price: decimal.Zero}

// Catalog indexes menu items by id. The zero value is empty and usable.
type Catalog struct {
	items []MenuItem
	byID  map[int]int
}

func NewCatalog(items []MenuItem) *Catalog {
	c := &Catalog{}
	c.Replace(items)
	return c
}

// Replace swaps the whole catalog, keeping the server's order.
func (c *Catalog) Replace(items []MenuItem) {
	c.items = append([]MenuItem(nil), items...)
	c.byID = make(map[int]int, len(items))
	for i, it := range c.items {
		c.byID[it.ID] = i
	}
}

func (c *Catalog) Lookup(id int) (MenuItem, bool) {
	if c == nil || c.byID == nil {
		return MenuItem{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return MenuItem{}, false
	}
	return c.items[i], true
}

// Describe returns the item or Placeholder (carrying the requested id).
func (c *Catalog) Describe(id int) MenuItem {
	if it, ok := c.Lookup(id); ok {
		return it
	}
	p := Placeholder
	p.ID = id
	return p
}

func (c *Catalog) Items() []MenuItem {
	if c == nil {
		return nil
	}
	return append([]MenuItem(nil), c.items...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}
