package dto

import "dineflow/internal/microservices/order/domain/dao"

type CreateOrderRequest struct {
	TableNumber  int              `json:"tableNumber"`
	CustomerName string           `json:"customerName"`
	Notes        string           `json:"notes"`
	Items        []OrderItemInput `json:"items"`
}

// OrderItemInput carries the menu snapshot supplied by the caller. Prices
// are trusted as given; they are not checked against the live menu.
type OrderItemInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

// Problem is the error body returned by every endpoint (simplified RFC 7807).
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Error     string `json:"error"`
	Current   string `json:"current,omitempty"`
	Requested string `json:"requested,omitempty"`
}

// ConvertItems maps input items to the order snapshot.
func ConvertItems(inputs []OrderItemInput) []dao.OrderItem {
	items := make([]dao.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, dao.OrderItem{
			ItemID:   in.ID,
			Name:     in.Name,
			Price:    in.Price,
			Quantity: in.Quantity,
		})
	}
	return items
}
