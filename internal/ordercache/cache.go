// Package ordercache mirrors a window of server orders for display. Cache and
// Cursor are plain state with no locking; one goroutine must own them.
package ordercache

import (
	"sort"

	"github.com/MikeMC777/ordenes-pos/internal/order"
)

type SortOrder string

const (
	// SortReceived keeps the order pages and updates arrived in.
	SortReceived SortOrder = "received"
	// SortNewest orders by created_at, newest first.
	SortNewest SortOrder = "newest"
)

type Cache struct {
	byID     map[int]order.Order
	display  []int
	listed   map[int]struct{} // ids present in display
	expanded map[int]struct{}
	owner    map[int]int // order item id -> order id
}

func New() *Cache {
	return &Cache{
		byID:     make(map[int]order.Order),
		listed:   make(map[int]struct{}),
		expanded: make(map[int]struct{}),
		owner:    make(map[int]int),
	}
}

// AppendPage concatenates a fetched page onto the display list. Ids already
// shown are listed again; pages are not de-duplicated against each other.
func (c *Cache) AppendPage(orders []order.Order) {
	for _, o := range orders {
		c.store(o)
		c.list(o.ID)
	}
}

// ReplaceAll swaps the display list for orders (e.g. a by-date listing).
func (c *Cache) ReplaceAll(orders []order.Order) {
	c.Reset()
	c.AppendPage(orders)
}

// Reset drops every cached order. Expansion state is kept.
func (c *Cache) Reset() {
	c.byID = make(map[int]order.Order)
	c.owner = make(map[int]int)
	c.display = nil
	c.listed = make(map[int]struct{})
}

func (c *Cache) list(id int) {
	c.display = append(c.display, id)
	c.listed[id] = struct{}{}
}

func (c *Cache) Get(id int) (order.Order, bool) {
	o, ok := c.byID[id]
	if !ok {
		return order.Order{}, false
	}
	return o.Clone(), true
}

func (c *Cache) Len() int { return len(c.display) }

// Orders returns the display list in received order.
func (c *Cache) Orders() []order.Order {
	out := make([]order.Order, 0, len(c.display))
	for _, id := range c.display {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

func (c *Cache) Sorted(by SortOrder) []order.Order {
	out := c.Orders()
	if by == SortNewest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		})
	}
	return out
}

// MergeDetail stores a fully fetched order, replacing its items. An order not
// on the display list is kept for item updates but not listed.
func (c *Cache) MergeDetail(o order.Order) {
	c.store(o)
}

func (c *Cache) Expand(id int)   { c.expanded[id] = struct{}{} }
func (c *Cache) Collapse(id int) { delete(c.expanded, id) }

func (c *Cache) Toggle(id int) bool {
	if c.IsExpanded(id) {
		c.Collapse(id)
		return false
	}
	c.Expand(id)
	return true
}

func (c *Cache) IsExpanded(id int) bool {
	_, ok := c.expanded[id]
	return ok
}

func (c *Cache) Expanded() []int {
	out := make([]int, 0, len(c.expanded))
	for id := range c.expanded {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// store upserts o and re-indexes its items.
func (c *Cache) store(o order.Order) {
	if old, ok := c.byID[o.ID]; ok {
		for _, it := range old.Items {
			if c.owner[it.ID] == o.ID {
				delete(c.owner, it.ID)
			}
		}
	}
	cp := o.Clone()
	c.byID[o.ID] = cp
	for _, it := range cp.Items {
		c.owner[it.ID] = o.ID
	}
}

// Snapshot is a deep copy of the cache state, comparable with reflect.DeepEqual.
type Snapshot struct {
	Orders   map[int]order.Order
	Display  []int
	Expanded []int
	Owners   map[int]int
}

func (c *Cache) Snapshot() Snapshot {
	s := Snapshot{
		Orders:   make(map[int]order.Order, len(c.byID)),
		Display:  append([]int(nil), c.display...),
		Expanded: c.Expanded(),
		Owners:   make(map[int]int, len(c.owner)),
	}
	for id, o := range c.byID {
		s.Orders[id] = o.Clone()
	}
	for k, v := range c.owner {
		s.Owners[k] = v
	}
	return s
}
