package menu

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCatalog_LookupAndDescribe(t *testing.T) {
	c := NewCatalog([]MenuItem{
		{ID: 7, Name: "Iced tea", Price: decimal.RequireFromString("2.50"), IsAvailable: true},
		{ID: 9, Name: "Pho", Price: decimal.RequireFromString("6.00")},
	})

	if it, ok := c.Lookup(7); !ok || it.Name != "Iced tea" {
		t.Fatalf("lookup 7 = %+v, %t", it, ok)
	}
	if _, ok := c.Lookup(42); ok {
		t.Fatalf("lookup of unknown id should fail")
	}

	d := c.Describe(42)
	if d.ID != 42 || d.Name != Placeholder.Name || !d.Price.IsZero() {
		t.Fatalf("describe unknown = %+v", d)
	}
}

func TestCatalog_ZeroValue(t *testing.T) {
	var c *Catalog
	if _, ok := c.Lookup(1); ok || c.Len() != 0 {
		t.Fatalf("nil catalog should be empty")
	}
	if d := c.Describe(3); d.Name != Placeholder.Name {
		t.Fatalf("nil catalog describe = %+v", d)
	}
}
