package ordercache

import "errors"

// ErrNoMorePages is returned instead of fetching once a short page was seen.
var ErrNoMorePages = errors.New("no more orders to load")

// Cursor tracks offset/limit for "load more". A page shorter than Limit
// marks the listing as exhausted.
type Cursor struct {
	Offset    int
	Limit     int
	exhausted bool
}

func NewCursor(limit int) *Cursor {
	if limit <= 0 {
		limit = 10
	}
	return &Cursor{Limit: limit}
}

func (c *Cursor) Reset() {
	c.Offset = 0
	c.exhausted = false
}

// Observe records the size of the page just fetched.
func (c *Cursor) Observe(n int) {
	c.exhausted = n < c.Limit
}

func (c *Cursor) HasMore() bool { return !c.exhausted }

// Advance moves to the next page and returns its offset.
func (c *Cursor) Advance() int {
	c.Offset += c.Limit
	return c.Offset
}

// Rewind undoes an Advance whose fetch failed.
func (c *Cursor) Rewind() {
	c.Offset -= c.Limit
	if c.Offset < 0 {
		c.Offset = 0
	}
}
