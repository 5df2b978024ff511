package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/ordenes-pos/docs"
	"github.com/MikeMC777/ordenes-pos/internal/basket"
	"github.com/MikeMC777/ordenes-pos/internal/httpx"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/ordercache"
	"github.com/MikeMC777/ordenes-pos/internal/terminal"
)

func newRouter(term *terminal.Terminal, notes *terminal.LogNotifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/notifications", listNotificationsHandler(notes))

	r.GET("/menu", getMenuHandler(term))
	r.POST("/menu/refresh", refreshMenuHandler(term))
	r.GET("/tables", getTablesHandler(term))
	r.POST("/tables/refresh", refreshTablesHandler(term))

	r.GET("/basket", getBasketHandler(term))
	r.PUT("/basket/table", selectTableHandler(term))
	r.DELETE("/basket/table", clearTableHandler(term))
	r.POST("/basket/lines", addLineHandler(term))
	r.DELETE("/basket/lines/:index", removeLineHandler(term))
	r.POST("/basket/submit", submitOrderHandler(term))

	r.GET("/orders", listOrdersHandler(term))
	r.POST("/orders/reload", reloadOrdersHandler(term))
	r.POST("/orders/more", loadMoreHandler(term))
	r.GET("/orders/by-date/:date", ordersByDateHandler(term))
	r.GET("/orders/:id", orderDetailHandler(term))
	r.POST("/orders/:id/toggle", toggleOrderHandler(term))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(term))
	r.PUT("/orders/:id/paid", updatePaidHandler(term))
	r.PUT("/orders/:id/extend", extendOrderHandler(term))
	r.GET("/orders/:id/changes", listChangesHandler(term))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

// writeError maps terminal errors to status codes.
func writeError(c *gin.Context, err error) {
	var ve *order.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": ve.Field})
	case errors.Is(err, order.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, terminal.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, basket.ErrLineOutOfRange),
		errors.Is(err, order.ErrJournalDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case order.IsNetwork(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, terminal.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// queryInt reads an optional integer query parameter in [lo, hi]. An absent
// parameter yields def; anything else out of range answers 400.
func queryInt(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		msg := fmt.Sprintf("%s must be an integer between %d and %d", key, lo, hi)
		if hi == math.MaxInt32 {
			msg = fmt.Sprintf("%s must be an integer of at least %d", key, lo)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return n, true
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

// listNotificationsHandler godoc
// @Summary  Recent user notifications, newest first
// @Tags     terminal
// @Produce  json
// @Success  200 {array} terminal.Message
// @Router   /notifications [get]
func listNotificationsHandler(notes *terminal.LogNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs := notes.Recent()
		if msgs == nil {
			msgs = []terminal.Message{}
		}
		c.JSON(http.StatusOK, msgs)
	}
}

// getMenuHandler godoc
// @Summary  Cached menu
// @Tags     menu
// @Produce  json
// @Success  200 {array} menu.MenuItem
// @Router   /menu [get]
func getMenuHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := term.Menu(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(items))
	}
}

// refreshMenuHandler godoc
// @Summary  Reload the menu from the order service
// @Tags     menu
// @Produce  json
// @Success  200 {array} menu.MenuItem
// @Failure  401 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /menu/refresh [post]
func refreshMenuHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := term.RefreshMenu(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(items))
	}
}

// getTablesHandler godoc
// @Summary  Cached tables and the current selection
// @Tags     tables
// @Produce  json
// @Success  200 {object} terminal.TableList
// @Router   /tables [get]
func getTablesHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		tl, err := term.Tables(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tl)
	}
}

// refreshTablesHandler godoc
// @Summary  Reload tables from the order service
// @Tags     tables
// @Produce  json
// @Success  200 {array} menu.Table
// @Failure  502 {object} map[string]string
// @Router   /tables/refresh [post]
func refreshTablesHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, err := term.RefreshTables(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(tables))
	}
}

// getBasketHandler godoc
// @Summary  Basket lines, selected table and display total
// @Tags     basket
// @Produce  json
// @Success  200 {object} terminal.BasketView
// @Router   /basket [get]
func getBasketHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := term.Basket(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

type selectTableRequest struct {
	TableID int `json:"table_id" binding:"required" example:"3"`
}

// selectTableHandler godoc
// @Summary  Select the table the basket is for
// @Tags     basket
// @Accept   json
// @Param    body body selectTableRequest true "table"
// @Success  204
// @Failure  400 {object} map[string]string
// @Router   /basket/table [put]
func selectTableHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := term.SelectTable(c.Request.Context(), req.TableID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// clearTableHandler godoc
// @Summary  Clear the table selection
// @Tags     basket
// @Success  204
// @Router   /basket/table [delete]
func clearTableHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := term.ClearTable(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type addLineRequest struct {
	ItemID   int    `json:"item_id"  binding:"required" example:"7"`
	Quantity int    `json:"quantity" example:"2"`
	Note     string `json:"note"     example:"no ice"`
}

// addLineHandler godoc
// @Summary  Add a menu item to the basket
// @Description Unknown or unavailable items and quantities below 1 are ignored (422).
// @Tags     basket
// @Accept   json
// @Param    body body addLineRequest true "line"
// @Success  204
// @Failure  422 {object} map[string]string
// @Router   /basket/lines [post]
func addLineHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		added, err := term.AddToBasket(c.Request.Context(), req.ItemID, req.Quantity, req.Note)
		if err != nil {
			writeError(c, err)
			return
		}
		if !added {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "item not available or quantity below 1"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// removeLineHandler godoc
// @Summary  Remove a basket line by position
// @Tags     basket
// @Param    index path int true "line index"
// @Success  204
// @Failure  404 {object} map[string]string
// @Router   /basket/lines/{index} [delete]
func removeLineHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		if err := term.RemoveFromBasket(c.Request.Context(), idx); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// submitOrderHandler godoc
// @Summary  Submit the basket as an order for the selected table
// @Tags     basket
// @Produce  json
// @Success  201 {object} order.Order
// @Failure  400 {object} map[string]string
// @Failure  401 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /basket/submit [post]
func submitOrderHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := term.SubmitOrder(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listOrdersHandler godoc
// @Summary  Cached orders
// @Tags     orders
// @Produce  json
// @Param    sort   query string false "received (default) or newest"
// @Param    status query string false "opening, closed or canceled"
// @Success  200 {object} terminal.OrderList
// @Failure  400 {object} map[string]string
// @Router   /orders [get]
func listOrdersHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		by := ordercache.SortOrder(c.DefaultQuery("sort", string(ordercache.SortReceived)))
		if by != ordercache.SortReceived && by != ordercache.SortNewest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be received or newest"})
			return
		}
		status := order.OrderStatus(c.Query("status"))
		if status != "" && !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		list, err := term.Orders(c.Request.Context(), by, status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// reloadOrdersHandler godoc
// @Summary  Drop the cached list and load the first page
// @Tags     orders
// @Produce  json
// @Param    limit query int false "page size, 1 to 100 (default: configured page size)"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /orders/reload [post]
func reloadOrdersHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 0 lets the terminal use its configured page size
		limit, ok := queryInt(c, "limit", 0, 1, 100)
		if !ok {
			return
		}
		n, err := term.ResetAndLoadFirstPage(c.Request.Context(), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"loaded": n})
	}
}

// loadMoreHandler godoc
// @Summary  Append the next page of orders
// @Description Answers {"more": false} without calling the service once the last page came back short.
// @Tags     orders
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Failure  502 {object} map[string]string
// @Router   /orders/more [post]
func loadMoreHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := term.LoadMore(c.Request.Context())
		if errors.Is(err, ordercache.ErrNoMorePages) {
			c.JSON(http.StatusOK, gin.H{"loaded": 0, "more": false})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		list, err := term.Orders(c.Request.Context(), ordercache.SortReceived, "")
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"loaded": n, "more": list.More})
	}
}

// ordersByDateHandler godoc
// @Summary  Replace the cached list with one day's orders
// @Tags     orders
// @Produce  json
// @Param    date path string true "YYYY-MM-DD"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Router   /orders/by-date/{date} [get]
func ordersByDateHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := term.LoadByDate(c.Request.Context(), c.Param("date"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"loaded": n})
	}
}

// orderDetailHandler godoc
// @Summary  Fetch one order with its items and expand it
// @Tags     orders
// @Produce  json
// @Param    id path int true "order id"
// @Success  200 {object} terminal.OrderDetail
// @Failure  404 {object} map[string]string
// @Router   /orders/{id} [get]
func orderDetailHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		d, err := term.FetchDetail(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// toggleOrderHandler godoc
// @Summary  Expand or collapse an order in the list
// @Tags     orders
// @Param    id path int true "order id"
// @Success  200 {object} map[string]bool
// @Router   /orders/{id}/toggle [post]
func toggleOrderHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		expanded, err := term.ToggleExpanded(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"expanded": expanded})
	}
}

type statusRequest struct {
	Status order.OrderStatus `json:"status" binding:"required" example:"closed"`
}

// updateOrderStatusHandler godoc
// @Summary  Change an order's status
// @Description The cached order changes once the update is reconciled.
// @Tags     orders
// @Accept   json
// @Param    id   path int           true "order id"
// @Param    body body statusRequest true "status"
// @Success  202
// @Failure  400 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /orders/{id}/status [put]
func updateOrderStatusHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := term.SetOrderStatus(c.Request.Context(), id, req.Status); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusAccepted)
	}
}

type paidRequest struct {
	IsPaid *bool `json:"is_paid" binding:"required"`
}

// updatePaidHandler godoc
// @Summary  Set or clear an order's paid flag
// @Tags     orders
// @Accept   json
// @Param    id   path int         true "order id"
// @Param    body body paidRequest true "paid flag"
// @Success  202
// @Failure  400 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /orders/{id}/paid [put]
func updatePaidHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req paidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := term.SetPaidFlag(c.Request.Context(), id, *req.IsPaid); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusAccepted)
	}
}

// extendOrderHandler godoc
// @Summary  Add items to an open order
// @Tags     orders
// @Accept   json
// @Param    id   path int                     true "order id"
// @Param    body body []order.CreateOrderItem true "new items"
// @Success  202
// @Failure  400 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /orders/{id}/extend [put]
func extendOrderHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var items []order.CreateOrderItem
		if err := c.ShouldBindJSON(&items); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := term.ExtendOrder(c.Request.Context(), id, items); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusAccepted)
	}
}

// listChangesHandler godoc
// @Summary  Reconciliations applied to an order, newest first
// @Tags     orders
// @Produce  json
// @Param    id     path  int true  "order id"
// @Param    limit  query int false "1 to 100, default 20"
// @Param    offset query int false "0 or more"
// @Failure  400 {object} map[string]string
// @Success  200 {array} order.Change
// @Failure  404 {object} map[string]string
// @Router   /orders/{id}/changes [get]
func listChangesHandler(term *terminal.Terminal) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit", 20, 1, 100)
		if !ok {
			return
		}
		offset, ok := queryInt(c, "offset", 0, 0, math.MaxInt32)
		if !ok {
			return
		}
		changes, err := term.Changes(c.Request.Context(), id, limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(changes))
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
