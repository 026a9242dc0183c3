package models

import (
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in lifecycle order
var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether a user may still cancel an order in status s
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

var (
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingFee       = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.10")
)

// OrderPricing is the price breakdown computed once at order creation
type OrderPricing struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// PriceOrder derives shipping, tax and total from the items price.
// Shipping is free strictly above the threshold; tax is rounded to cents.
func PriceOrder(itemsPrice decimal.Decimal) OrderPricing {
	shipping := FlatShippingFee
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := itemsPrice.Mul(TaxRate).Round(2)
	return OrderPricing{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax),
	}
}

// Validate checks every address field is present
func (a ShippingAddress) Validate() error {
	switch {
	case a.Street == "":
		return InvalidInput("shipping street is required")
	case a.City == "":
		return InvalidInput("shipping city is required")
	case a.State == "":
		return InvalidInput("shipping state is required")
	case a.ZipCode == "":
		return InvalidInput("shipping zip code is required")
	case a.Country == "":
		return InvalidInput("shipping country is required")
	}
	return nil
}

// AmountMinor converts the order total to minor currency units (cents)
func (o *Order) AmountMinor() int64 {
	return o.TotalPrice.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	out := *o
	out.OrderItems = append([]OrderItem(nil), o.OrderItems...)
	if o.PaidAt != nil {
		t := *o.PaidAt
		out.PaidAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		out.DeliveredAt = &t
	}
	if o.PaymentResult != nil {
		r := *o.PaymentResult
		out.PaymentResult = &r
	}
	return &out
}
