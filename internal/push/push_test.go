package push_test

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ordenes-pos/internal/fakeapi"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/push"
)

func TestDecode(t *testing.T) {
	ev, err := push.Decode([]byte(`{"event":"order_item_updated","data":{"id":50,"item_id":7,"quantity":2,"note":"","status":"completed"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != push.OrderItemUpdated || ev.Item == nil || ev.Item.ID != 50 || ev.Item.Status != order.ItemCompleted {
		t.Fatalf("event=%+v", ev)
	}

	ev, err = push.Decode([]byte(`{"event":"order_updated","data":{"id":5,"table_id":3,"status":"closed","order_items":[]}}`))
	if err != nil || ev.Order == nil || ev.Order.Status != order.StatusClosed {
		t.Fatalf("order event=%+v err=%v", ev, err)
	}

	if _, err := push.Decode([]byte(`{"event":"table_updated","data":{}}`)); !errors.Is(err, push.ErrUnknownEvent) {
		t.Fatalf("err=%v, want ErrUnknownEvent", err)
	}
	if _, err := push.Decode([]byte(`not json`)); err == nil {
		t.Fatalf("garbage should fail")
	}
}

func TestEncodeDecode_Envelope(t *testing.T) {
	it := &order.Item{ID: 50, OrderID: 5, ItemID: 7, Quantity: 2, Status: order.ItemReceived}
	b, err := push.Encode(push.Event{Type: push.OrderItemUpdated, Item: it})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"event":"order_item_updated","data":{`) {
		t.Fatalf("envelope=%s", b)
	}
	if _, err := push.Encode(push.Event{Type: push.OrderUpdated}); err == nil {
		t.Fatalf("order_updated without order should fail")
	}
}

type collector struct {
	mu     sync.Mutex
	events []push.Event
}

func (c *collector) handle(ev push.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestMemory_FanOut(t *testing.T) {
	m := push.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := &collector{}, &collector{}
	go m.Subscribe(ctx, a.handle)
	go m.Subscribe(ctx, b.handle)
	waitFor(t, "two subscribers", func() bool { return m.Subscribers() == 2 })

	m.Publish(push.Event{Type: push.OrderUpdated, Order: &order.Order{ID: 1}})
	waitFor(t, "delivery", func() bool { return a.len() == 1 && b.len() == 1 })

	cancel()
	waitFor(t, "unsubscribe", func() bool { return m.Subscribers() == 0 })
	// nobody listening: must not block
	m.Publish(push.Event{Type: push.OrderUpdated, Order: &order.Order{ID: 2}})
}

func TestWebSocketSource_DeliversEvents(t *testing.T) {
	fake := fakeapi.New("secret")
	fake.SeedOrders(order.Order{ID: 5, Status: order.StatusOpening, Items: []order.Item{{ID: 50, OrderID: 5, ItemID: 7, Quantity: 2, Status: order.ItemPending}}})
	srv := httptest.NewServer(fake.Router())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := &collector{}
	src := push.NewWebSocketSource("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/orders", order.StaticToken("secret"))
	done := make(chan error, 1)
	go func() { done <- src.Subscribe(ctx, got.handle) }()
	waitFor(t, "listener", func() bool { return fake.Listeners() == 1 })

	fake.SetItemStatus(5, 50, order.ItemCompleted)
	waitFor(t, "item event", func() bool { return got.len() == 1 })

	got.mu.Lock()
	ev := got.events[0]
	got.mu.Unlock()
	if ev.Type != push.OrderItemUpdated || ev.Item.ID != 50 || ev.Item.Status != order.ItemCompleted {
		t.Fatalf("event=%+v", ev)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("subscribe returned %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("subscribe did not stop on cancel")
	}
}

func TestWebSocketSource_Unauthorized(t *testing.T) {
	fake := fakeapi.New("secret")
	srv := httptest.NewServer(fake.Router())
	defer srv.Close()

	src := push.NewWebSocketSource("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/orders", order.StaticToken("wrong"))
	if err := src.Subscribe(context.Background(), func(push.Event) {}); !errors.Is(err, order.ErrUnauthorized) {
		t.Fatalf("err=%v, want ErrUnauthorized", err)
	}
}

// flakySource fails a few times, then reports 401.
type flakySource struct {
	mu    sync.Mutex
	calls int
	fails int
}

func (f *flakySource) Subscribe(ctx context.Context, h push.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return errors.New("connection reset")
	}
	return order.ErrUnauthorized
}

func TestRun_RetriesThenStopsOnUnauthorized(t *testing.T) {
	src := &flakySource{fails: 2}
	err := push.Run(context.Background(), src, func(push.Event) {}, time.Millisecond)
	if !errors.Is(err, order.ErrUnauthorized) {
		t.Fatalf("err=%v, want ErrUnauthorized", err)
	}
	if src.calls != 3 {
		t.Fatalf("calls=%d, want 3", src.calls)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := push.NewMemory()
	done := make(chan error, 1)
	go func() { done <- push.Run(ctx, m, func(push.Event) {}, time.Millisecond) }()
	waitFor(t, "subscriber", func() bool { return m.Subscribers() == 1 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}
