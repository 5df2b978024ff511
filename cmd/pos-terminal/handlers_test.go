package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/docs"
	"github.com/MikeMC777/ordenes-pos/internal/fakeapi"
	"github.com/MikeMC777/ordenes-pos/internal/menu"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/terminal"
)

//
// ---------- FAKES ----------
//

// newStack wires a real Terminal to an in-memory order service.
func newStack(t *testing.T, opts terminal.Options) (*gin.Engine, *fakeapi.Server, *terminal.Terminal) {
	t.Helper()
	fake := fakeapi.New("tok")
	fake.SeedMenu(
		menu.MenuItem{ID: 7, Name: "Iced tea", Price: decimal.RequireFromString("2.50"), IsAvailable: true},
		menu.MenuItem{ID: 9, Name: "Pho", Price: decimal.RequireFromString("6.00"), IsAvailable: true},
	)
	fake.SeedTables(menu.Table{ID: 3, IsAvailable: true})
	srv := httptest.NewServer(fake.Router())
	t.Cleanup(srv.Close)

	notes := terminal.NewLogNotifier()
	opts.Notifier = notes
	term := terminal.New(order.NewClient(srv.URL, order.StaticToken("tok")), opts)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = term.Run(ctx) }()
	t.Cleanup(cancel)

	if _, err := term.RefreshMenu(ctx); err != nil {
		t.Fatalf("menu: %v", err)
	}
	if _, err := term.RefreshTables(ctx); err != nil {
		t.Fatalf("tables: %v", err)
	}
	return newRouter(term, notes), fake, term
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seed(fake *fakeapi.Server, n int) {
	for i := 1; i <= n; i++ {
		fake.SeedOrders(order.Order{
			ID: i, TableID: 3, Status: order.StatusOpening,
			CreatedAt: order.Timestamp{Time: time.Date(2025, 3, 1, 9, i, 0, 0, time.UTC)},
			Items:     []order.Item{{ID: i * 10, OrderID: i, ItemID: 7, Quantity: 1, Status: order.ItemPending}},
		})
	}
}

//
// ---------- TESTS ----------
//

func TestHealthz(t *testing.T) {
	r, _, _ := newStack(t, terminal.Options{})
	w := do(r, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestBasketFlow_SubmitCreatesOrder(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{SubmitGuard: true})

	if w := do(r, http.MethodPut, "/basket/table", `{"table_id":3}`); w.Code != http.StatusNoContent {
		t.Fatalf("select table status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/basket/lines", `{"item_id":7,"quantity":2,"note":"no ice"}`); w.Code != http.StatusNoContent {
		t.Fatalf("add line status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/basket/lines", `{"item_id":9,"quantity":0}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero quantity should be ignored with 422, got %d", w.Code)
	}

	var view terminal.BasketView
	w := do(r, http.MethodGet, "/basket", "")
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	if view.TableID != 3 || len(view.Lines) != 1 || !view.Total.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("basket=%+v", view)
	}

	w = do(r, http.MethodPost, "/basket/submit", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status=%d body=%s", w.Code, w.Body.String())
	}
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if _, ok := fake.Order(o.ID); !ok {
		t.Fatalf("order %d not on the backend", o.ID)
	}

	_ = json.Unmarshal(do(r, http.MethodGet, "/basket", "").Body.Bytes(), &view)
	if len(view.Lines) != 0 || view.TableID != 0 {
		t.Fatalf("basket not cleared: %+v", view)
	}
}

func TestSubmit_ValidationIs400(t *testing.T) {
	r, _, _ := newStack(t, terminal.Options{})
	w := do(r, http.MethodPost, "/basket/submit", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (want 400)", w.Code, w.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["field"] != "table_id" {
		t.Fatalf("body=%v", body)
	}
}

func TestSubmit_BackendErrors(t *testing.T) {
	cases := []struct {
		name    string
		backend int
		want    int
	}{
		{"unauthorized", http.StatusUnauthorized, http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, fake, _ := newStack(t, terminal.Options{})
			do(r, http.MethodPut, "/basket/table", `{"table_id":3}`)
			do(r, http.MethodPost, "/basket/lines", `{"item_id":7,"quantity":1}`)

			fake.FailNext(tc.backend, 1)
			if w := do(r, http.MethodPost, "/basket/submit", ""); w.Code != tc.want {
				t.Fatalf("status=%d body=%s (want %d)", w.Code, w.Body.String(), tc.want)
			}
		})
	}
}

func TestRemoveLine_OutOfRange(t *testing.T) {
	r, _, _ := newStack(t, terminal.Options{})
	if w := do(r, http.MethodDelete, "/basket/lines/3", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (want 404)", w.Code)
	}
	if w := do(r, http.MethodDelete, "/basket/lines/x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d (want 400)", w.Code)
	}
}

func TestOrders_ReloadAndLoadMore(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{PageSize: 10})
	seed(fake, 14)

	if w := do(r, http.MethodPost, "/orders/reload?limit=10", ""); w.Code != http.StatusOK {
		t.Fatalf("reload status=%d body=%s", w.Code, w.Body.String())
	}

	var more struct {
		Loaded int  `json:"loaded"`
		More   bool `json:"more"`
	}
	_ = json.Unmarshal(do(r, http.MethodPost, "/orders/more", "").Body.Bytes(), &more)
	if more.Loaded != 4 || more.More {
		t.Fatalf("load more=%+v, want 4/false", more)
	}
	_ = json.Unmarshal(do(r, http.MethodPost, "/orders/more", "").Body.Bytes(), &more)
	if more.Loaded != 0 || more.More {
		t.Fatalf("exhausted load more=%+v", more)
	}
	if n := fake.CountRequests(http.MethodGet, "/orders/"); n != 2 {
		t.Fatalf("backend list calls=%d, want 2", n)
	}

	var list terminal.OrderList
	_ = json.Unmarshal(do(r, http.MethodGet, "/orders?sort=newest", "").Body.Bytes(), &list)
	if len(list.Orders) != 14 || list.Orders[0].ID != 14 {
		t.Fatalf("orders=%d first=%d", len(list.Orders), list.Orders[0].ID)
	}
}

func TestOrders_BadQuery(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/orders?sort=oldest"},
		{http.MethodGet, "/orders?status=paid"},
		{http.MethodPost, "/orders/reload?limit=500"},
		{http.MethodPost, "/orders/reload?limit=0"},
		{http.MethodPost, "/orders/reload?limit=ten"},
		{http.MethodGet, "/orders/1/changes?limit=abc"},
		{http.MethodGet, "/orders/1/changes?offset=-1"},
	} {
		w := do(r, tc.method, tc.path, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s %s status=%d (want 400)", tc.method, tc.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Fatalf("%s %s body=%s", tc.method, tc.path, w.Body.String())
		}
	}
	if n := fake.CountRequests(http.MethodGet, "/orders/"); n != 0 {
		t.Fatalf("bad queries reached the backend %d times", n)
	}
}

func TestReload_LimitMessageMatchesRange(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{})
	seed(fake, 3)

	w := do(r, http.MethodPost, "/orders/reload?limit=0", "")
	if !strings.Contains(w.Body.String(), "between 1 and 100") {
		t.Fatalf("body=%s", w.Body.String())
	}
	// absent limit uses the configured page size
	if w := do(r, http.MethodPost, "/orders/reload", ""); w.Code != http.StatusOK {
		t.Fatalf("reload without limit status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/orders/reload?limit=1", ""); w.Code != http.StatusOK {
		t.Fatalf("reload limit=1 status=%d", w.Code)
	}
}

func TestOrderDetail(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{})
	seed(fake, 2)

	w := do(r, http.MethodGet, "/orders/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var d terminal.OrderDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("json: %v", err)
	}
	if d.ID != 2 || len(d.Lines) != 1 || d.Lines[0].Name != "Iced tea" {
		t.Fatalf("detail=%+v", d)
	}

	if w := do(r, http.MethodGet, "/orders/99", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing order status=%d (want 404)", w.Code)
	}
	if w := do(r, http.MethodGet, "/orders/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d (want 400)", w.Code)
	}

	var toggled map[string]bool
	_ = json.Unmarshal(do(r, http.MethodPost, "/orders/2/toggle", "").Body.Bytes(), &toggled)
	if toggled["expanded"] {
		t.Fatalf("detail expands, toggle should collapse")
	}
}

func TestUpdateStatus_AcceptedWithoutApplying(t *testing.T) {
	r, fake, term := newStack(t, terminal.Options{RefetchAfterMutation: false})
	seed(fake, 1)
	do(r, http.MethodPost, "/orders/reload", "")

	w := do(r, http.MethodPut, "/orders/1/status", `{"status":"closed"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	cached, _, _ := term.GetOrder(context.Background(), 1)
	if cached.Status != order.StatusOpening {
		t.Fatalf("cache applied the response: %+v", cached)
	}
	if srv, _ := fake.Order(1); srv.Status != order.StatusClosed {
		t.Fatalf("backend status=%s", srv.Status)
	}

	if w := do(r, http.MethodPut, "/orders/1/status", `{"status":"shipped"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status=%d (want 400)", w.Code)
	}
}

func TestUpdatePaid_RequiresFlag(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{RefetchAfterMutation: true})
	seed(fake, 1)

	if w := do(r, http.MethodPut, "/orders/1/paid", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing flag status=%d (want 400)", w.Code)
	}
	if w := do(r, http.MethodPut, "/orders/1/paid", `{"is_paid":true}`); w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if srv, _ := fake.Order(1); !srv.IsPaid {
		t.Fatalf("backend not paid")
	}
}

func TestExtendOrder(t *testing.T) {
	r, fake, _ := newStack(t, terminal.Options{})
	seed(fake, 1)

	if w := do(r, http.MethodPut, "/orders/1/extend", `[{"item_id":9,"quantity":2,"note":""}]`); w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if srv, _ := fake.Order(1); len(srv.Items) != 2 {
		t.Fatalf("items=%d, want 2", len(srv.Items))
	}
	if w := do(r, http.MethodPut, "/orders/1/extend", `[]`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty extend status=%d (want 400)", w.Code)
	}
}

func TestChanges_JournalDisabledIs404(t *testing.T) {
	r, _, _ := newStack(t, terminal.Options{})
	if w := do(r, http.MethodGet, "/orders/1/changes", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (want 404)", w.Code)
	}
}

func TestNotifications(t *testing.T) {
	r, _, _ := newStack(t, terminal.Options{})
	do(r, http.MethodPost, "/basket/submit", "")

	var msgs []terminal.Message
	_ = json.Unmarshal(do(r, http.MethodGet, "/notifications", "").Body.Bytes(), &msgs)
	if len(msgs) != 1 || msgs[0].Level != terminal.LevelError {
		t.Fatalf("messages=%+v", msgs)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

// Every API route must be described in the swagger document and every
// documented path must be served.
func TestSwaggerDocCoversRoutes(t *testing.T) {
	r, _, _ := newStack(t, terminal.Options{})

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger json: %v", err)
	}

	param := regexp.MustCompile(`:(\w+)`)
	served := map[string]bool{}
	for _, rt := range r.Routes() {
		if rt.Path == "/healthz" || strings.HasPrefix(rt.Path, "/swagger/") {
			continue
		}
		path, method := param.ReplaceAllString(rt.Path, "{$1}"), strings.ToLower(rt.Method)
		served[method+" "+path] = true
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("%s %s is not documented", rt.Method, rt.Path)
		}
	}
	for path, methods := range doc.Paths {
		for m := range methods {
			if !served[m+" "+path] {
				t.Errorf("documented %s %s is not served", m, path)
			}
		}
	}
}
