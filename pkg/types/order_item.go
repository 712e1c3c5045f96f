package types

import "github.com/google/uuid"

// OrderItem is one line of an order snapshot.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Size      string    `json:"size"`
	Color     *string   `json:"color,omitempty"`
	Quantity  int       `json:"quantity"`
}

type OrderItems []OrderItem

// TotalQuantity sums the quantity of every line.
func (items OrderItems) TotalQuantity() int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
