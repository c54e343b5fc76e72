package dao

import "time"

type Order struct {
	ID           string      `json:"id" bson:"_id"`
	OrderNumber  int64       `json:"orderNumber" bson:"orderNumber"`
	TableNumber  int         `json:"tableNumber" bson:"tableNumber"`
	CustomerName string      `json:"customerName" bson:"customerName"`
	Items        []OrderItem `json:"items" bson:"items"`
	Total        int64       `json:"total" bson:"total"`
	Status       Status      `json:"status" bson:"status"`
	Notes        string      `json:"notes" bson:"notes"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// OrderItem is a snapshot of a menu item taken when the order was placed.
type OrderItem struct {
	ItemID   string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Price    int64  `json:"price" bson:"price"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// Clone returns a copy that does not share the items slice.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	return c
}

// ComputeTotal sums price x quantity over the items.
func ComputeTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
