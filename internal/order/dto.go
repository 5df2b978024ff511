package order

// CreateOrderItem line payload sent to the backend.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ItemID   int    `json:"item_id"  example:"7"`
	Quantity int    `json:"quantity" example:"2"`
	Note     string `json:"note"     example:"no ice"`
}

// CreateOrderRequest payload for POST /orders/.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	TableID int               `json:"table_id" example:"3"`
	Items   []CreateOrderItem `json:"order_items"`
}

// UpdateOrderRequest partial update for PUT /orders/{id}/. Nil fields are not sent.
// swagger:model UpdateOrderRequest
type UpdateOrderRequest struct {
	Status *OrderStatus `json:"status,omitempty" example:"closed"`
	IsPaid *bool        `json:"is_paid,omitempty"`
}
