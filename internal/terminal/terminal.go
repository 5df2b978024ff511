// Package terminal owns the state of one POS terminal: menu catalog, tables,
// table selection, basket and order cache. A single goroutine (Run) mutates
// that state; every exported method hands it a closure and waits. Network
// calls happen on the caller's goroutine, outside the owner.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/MikeMC777/ordenes-pos/internal/basket"
	"github.com/MikeMC777/ordenes-pos/internal/menu"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/ordercache"
)

var (
	ErrSubmitInProgress = errors.New("an order submission is already in progress")
	ErrStopped          = errors.New("terminal stopped")
)

// Backend is the Remote Order Service. *order.Client satisfies it.
type Backend interface {
	ListMenu(ctx context.Context) ([]menu.MenuItem, error)
	ListTables(ctx context.Context) ([]menu.Table, error)
	ListOrders(ctx context.Context, offset, limit int) ([]order.Order, error)
	ListOrdersByDate(ctx context.Context, date string) ([]order.Order, error)
	GetOrder(ctx context.Context, id int) (*order.Order, error)
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error)
	UpdateOrder(ctx context.Context, id int, req order.UpdateOrderRequest) (*order.Order, error)
	ExtendOrder(ctx context.Context, id int, items []order.CreateOrderItem) (*order.Order, error)
}

type Options struct {
	PageSize int
	// SubmitGuard rejects a submit while another one is in flight.
	SubmitGuard bool
	// RefetchAfterMutation re-reads an order after a successful mutation and
	// reconciles it. Without it the cache waits for the push channel.
	RefetchAfterMutation bool
	Notifier             Notifier
	// Journal is optional.
	Journal order.Journal
}

type Terminal struct {
	api     Backend
	opts    Options
	notify  Notifier
	journal order.Journal

	ops     chan func()
	stopped chan struct{}

	// owned by Run
	catalog    *menu.Catalog
	tables     []menu.Table
	tableID    int
	basket     *basket.Basket
	cache      *ordercache.Cache
	cursor     *ordercache.Cursor
	paged      bool
	submitting bool
}

func New(api Backend, opts Options) *Terminal {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	notify := opts.Notifier
	if notify == nil {
		notify = NewLogNotifier()
	}
	catalog := menu.NewCatalog(nil)
	return &Terminal{
		api:     api,
		opts:    opts,
		notify:  notify,
		journal: opts.Journal,
		ops:     make(chan func()),
		stopped: make(chan struct{}),
		catalog: catalog,
		basket:  basket.New(catalog),
		cache:   ordercache.New(),
		cursor:  ordercache.NewCursor(opts.PageSize),
	}
}

// Run executes queued operations until ctx ends. Call it once.
func (t *Terminal) Run(ctx context.Context) error {
	defer close(t.stopped)
	log.Printf("[terminal] running (page size %d, submit guard %v, refetch %v, journal %v)",
		t.opts.PageSize, t.opts.SubmitGuard, t.opts.RefetchAfterMutation, t.journal != nil)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[terminal] stopping: %v", ctx.Err())
			return ctx.Err()
		case op := <-t.ops:
			op()
		}
	}
}

// do runs fn on the owner goroutine and waits for it. Once accepted, fn always
// runs to completion, so callers may read what it wrote.
func (t *Terminal) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn()
	}
	select {
	case t.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-t.stopped:
		return ErrStopped
	}
	<-done
	return nil
}

// fail reports err to the user and returns it. 401 goes to SessionExpired
// instead, and a cancelled caller is not reported at all.
func (t *Terminal) fail(msg string, err error) error {
	switch {
	case errors.Is(err, order.ErrUnauthorized):
		t.notify.SessionExpired()
	case errors.Is(err, context.Canceled):
	default:
		t.notify.Notify(LevelError, fmt.Sprintf("%s: %v", msg, err))
	}
	return err
}

func (t *Terminal) RefreshMenu(ctx context.Context) ([]menu.MenuItem, error) {
	items, err := t.api.ListMenu(ctx)
	if err != nil {
		return nil, t.fail("Failed to load menu", err)
	}
	var out []menu.MenuItem
	err = t.do(ctx, func() {
		t.catalog.Replace(items)
		out = t.catalog.Items()
	})
	return out, err
}

func (t *Terminal) Menu(ctx context.Context) ([]menu.MenuItem, error) {
	var out []menu.MenuItem
	err := t.do(ctx, func() { out = t.catalog.Items() })
	return out, err
}

func (t *Terminal) RefreshTables(ctx context.Context) ([]menu.Table, error) {
	tables, err := t.api.ListTables(ctx)
	if err != nil {
		return nil, t.fail("Failed to load tables", err)
	}
	err = t.do(ctx, func() { t.tables = append([]menu.Table(nil), tables...) })
	return tables, err
}

// TableList is the last fetched table list plus the current selection (0 = none).
type TableList struct {
	Tables   []menu.Table `json:"tables"`
	Selected int          `json:"selected"`
}

func (t *Terminal) Tables(ctx context.Context) (TableList, error) {
	var out TableList
	err := t.do(ctx, func() {
		out = TableList{Tables: append([]menu.Table{}, t.tables...), Selected: t.tableID}
	})
	return out, err
}

// SelectTable picks one of the fetched tables. Occupied tables cannot be picked.
func (t *Terminal) SelectTable(ctx context.Context, id int) error {
	var verr error
	err := t.do(ctx, func() {
		for _, tb := range t.tables {
			if tb.ID != id {
				continue
			}
			if !tb.IsAvailable {
				verr = &order.ValidationError{Field: "table_id", Reason: fmt.Sprintf("table %d is occupied", id)}
				return
			}
			t.tableID = id
			return
		}
		verr = &order.ValidationError{Field: "table_id", Reason: fmt.Sprintf("unknown table %d", id)}
	})
	if err != nil {
		return err
	}
	return verr
}

func (t *Terminal) ClearTable(ctx context.Context) error {
	return t.do(ctx, func() { t.tableID = 0 })
}
