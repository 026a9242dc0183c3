package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewCart returns an empty cart for userID
func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:     userID,
		Items:      []CartItem{},
		TotalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// FindItem returns the index of the line for productID, or -1
func (c *Cart) FindItem(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveItem drops the line for productID if present
func (c *Cart) RemoveItem(productID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// CalculateTotals recomputes TotalItems and TotalPrice from the current lines
func (c *Cart) CalculateTotals() {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Clone returns a deep copy of the cart
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = append([]CartItem(nil), c.Items...)
	if out.Items == nil {
		out.Items = []CartItem{}
	}
	return &out
}
