// Package fakeapi is an in-memory Remote Order Service: the REST contract the
// terminal consumes plus a websocket that pushes order updates. It backs the
// tests and the `pos-terminal fake-backend` command.
package fakeapi

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/menu"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/push"
)

// Request is a recorded call, for assertions.
type Request struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	RequestID string
	Body      []byte
}

type Server struct {
	// Token, when set, is the only bearer token accepted.
	Token string
	Now   func() time.Time

	mu         sync.Mutex
	menu       []menu.MenuItem
	tables     []menu.Table
	orders     []order.Order
	nextOrder  int
	nextItem   int
	requests   []Request
	failStatus int
	failCount  int

	wsMu  sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func New(token string) *Server {
	return &Server{
		Token:     token,
		Now:       func() time.Time { return time.Now().UTC() },
		nextOrder: 1,
		nextItem:  1,
		conns:     make(map[*websocket.Conn]struct{}),
	}
}

func (s *Server) SeedMenu(items ...menu.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = append(s.menu, items...)
}

func (s *Server) SeedTables(tables ...menu.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = append(s.tables, tables...)
}

// SeedOrders stores orders as given; ids and item ids must be set by the caller.
func (s *Server) SeedOrders(orders ...order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		s.orders = append(s.orders, o.Clone())
		if o.ID >= s.nextOrder {
			s.nextOrder = o.ID + 1
		}
		for _, it := range o.Items {
			if it.ID >= s.nextItem {
				s.nextItem = it.ID + 1
			}
		}
	}
	sort.Slice(s.orders, func(i, j int) bool { return s.orders[i].ID < s.orders[j].ID })
}

// FailNext makes the next n calls answer status.
func (s *Server) FailNext(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus, s.failCount = status, n
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts recorded calls with the given method and path prefix.
func (s *Server) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *Server) Order(id int) (order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.orders[i].Clone(), true
	}
	return order.Order{}, false
}

// SetItemStatus plays the kitchen: it moves one item and pushes order_item_updated.
// Unknown statuses are refused.
func (s *Server) SetItemStatus(orderID, itemID int, status order.ItemStatus) bool {
	if !status.Valid() {
		return false
	}
	s.mu.Lock()
	i := s.indexOf(orderID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	var updated *order.Item
	for k := range s.orders[i].Items {
		if s.orders[i].Items[k].ID == itemID {
			s.orders[i].Items[k].Status = status
			it := s.orders[i].Items[k]
			updated = &it
			break
		}
	}
	if updated != nil {
		s.recomputeTotal(i)
	}
	s.mu.Unlock()

	if updated == nil {
		return false
	}
	s.Broadcast(push.Event{Type: push.OrderItemUpdated, Item: updated})
	return true
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record(), s.auth(), s.failures())

	r.GET("/menu/", s.listMenu)
	r.GET("/tables/", s.listTables)
	r.GET("/orders/", s.listOrders)
	r.POST("/orders/", s.createOrder)
	r.GET("/orders/by-date/:date", s.ordersByDate)
	r.GET("/orders/:id/", s.getOrder)
	r.PUT("/orders/:id/", s.updateOrder)
	r.PUT("/orders/:id/extend", s.extendOrder)
	r.GET("/ws/orders", s.serveWS)
	return r
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			Auth:      c.GetHeader("Authorization"),
			RequestID: c.GetHeader("X-Request-ID"),
			Body:      body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Token != "" && c.GetHeader("Authorization") != "Bearer "+s.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Next()
	}
}

func (s *Server) failures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		status := 0
		if s.failCount > 0 {
			s.failCount--
			status = s.failStatus
		}
		s.mu.Unlock()
		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
			return
		}
		c.Next()
	}
}

func (s *Server) listMenu(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]menu.MenuItem{}, s.menu...))
}

func (s *Server) listTables(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]menu.Table{}, s.tables...))
}

func (s *Server) listOrders(c *gin.Context) {
	offset, err1 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, err2 := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err1 != nil || err2 != nil || offset < 0 || limit < 0 || limit > 100 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid offset/limit"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []order.Order{}
	for i := offset; i < len(s.orders) && len(out) < limit; i++ {
		out = append(out, s.orders[i].Clone())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) ordersByDate(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid date"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []order.Order{}
	for _, o := range s.orders {
		y1, m1, d1 := o.CreatedAt.Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			out = append(out, o.Clone())
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := s.orderID(c)
	if !ok {
		return
	}
	o, found := s.Order(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) createOrder(c *gin.Context) {
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "order_items must contain at least 1 item"})
		return
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "quantity must be >= 1"})
			return
		}
	}

	s.mu.Lock()
	o := order.Order{
		ID:        s.nextOrder,
		TableID:   req.TableID,
		ServerID:  1,
		Status:    order.StatusOpening,
		CreatedAt: order.Timestamp{Time: s.Now()},
		Items:     []order.Item{},
	}
	s.nextOrder++
	o.Items = s.newItems(o.ID, req.Items)
	s.orders = append(s.orders, o)
	i := len(s.orders) - 1
	s.recomputeTotal(i)
	s.setTableAvailability(req.TableID, false)
	out := s.orders[i].Clone()
	s.mu.Unlock()

	s.Broadcast(push.Event{Type: push.OrderUpdated, Order: &out})
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateOrder(c *gin.Context) {
	id, ok := s.orderID(c)
	if !ok {
		return
	}
	var req order.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid status"})
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
		return
	}
	o := &s.orders[i]
	if req.IsPaid != nil {
		o.IsPaid = *req.IsPaid
	}
	if req.Status != nil {
		o.Status = *req.Status
		if o.Status == order.StatusOpening {
			o.ClosedAt = nil
			s.setTableAvailability(o.TableID, false)
		} else {
			now := order.Timestamp{Time: s.Now()}
			o.ClosedAt = &now
			s.setTableAvailability(o.TableID, true)
		}
	}
	out := o.Clone()
	s.mu.Unlock()

	s.Broadcast(push.Event{Type: push.OrderUpdated, Order: &out})
	c.JSON(http.StatusOK, out)
}

func (s *Server) extendOrder(c *gin.Context) {
	id, ok := s.orderID(c)
	if !ok {
		return
	}
	var items []order.CreateOrderItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
		return
	}
	s.orders[i].Items = append(s.orders[i].Items, s.newItems(id, items)...)
	s.recomputeTotal(i)
	out := s.orders[i].Clone()
	s.mu.Unlock()

	s.Broadcast(push.Event{Type: push.OrderUpdated, Order: &out})
	c.JSON(http.StatusOK, out)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[fakeapi] ws upgrade error: %v", err)
		return
	}
	s.wsMu.Lock()
	s.conns[conn] = struct{}{}
	s.wsMu.Unlock()

	// drain until the client goes away
	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.conns, conn)
			s.wsMu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast writes ev to every connected websocket client.
func (s *Server) Broadcast(ev push.Event) {
	msg, err := push.Encode(ev)
	if err != nil {
		log.Printf("[fakeapi] encode event: %v", err)
		return
	}
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("[fakeapi] ws write error: %v", err)
			_ = conn.Close()
			delete(s.conns, conn)
		}
	}
}

func (s *Server) Listeners() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return len(s.conns)
}

func (s *Server) orderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid order id"})
		return 0, false
	}
	return id, true
}

// callers hold s.mu
func (s *Server) indexOf(id int) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) newItems(orderID int, in []order.CreateOrderItem) []order.Item {
	out := make([]order.Item, 0, len(in))
	for _, it := range in {
		out = append(out, order.Item{
			ID:       s.nextItem,
			OrderID:  orderID,
			ItemID:   it.ItemID,
			Quantity: it.Quantity,
			Note:     it.Note,
			Status:   order.ItemPending,
		})
		s.nextItem++
	}
	return out
}

// canceled lines are not billed
func (s *Server) recomputeTotal(i int) {
	total := decimal.Zero
	for _, it := range s.orders[i].Items {
		if it.Status == order.ItemCanceled {
			continue
		}
		for _, m := range s.menu {
			if m.ID == it.ItemID {
				total = total.Add(m.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
				break
			}
		}
	}
	s.orders[i].TotalAmount = total
}

func (s *Server) setTableAvailability(id int, available bool) {
	for i := range s.tables {
		if s.tables[i].ID == id {
			s.tables[i].IsAvailable = available
		}
	}
}
