package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCart_CalculateTotals(t *testing.T) {
	cart := NewCart("u1", time.Now())
	cart.Items = []CartItem{
		{ProductID: "a", Quantity: 2, Price: dec("20")},
		{ProductID: "b", Quantity: 1, Price: dec("15")},
		{ProductID: "c", Quantity: 3, Price: dec("0.10")},
	}
	cart.CalculateTotals()

	assert.Equal(t, 6, cart.TotalItems)
	assert.True(t, dec("55.30").Equal(cart.TotalPrice), "got %s", cart.TotalPrice)

	cart.RemoveItem("a")
	cart.RemoveItem("missing")
	cart.CalculateTotals()
	assert.Equal(t, 4, cart.TotalItems)
	assert.True(t, dec("15.30").Equal(cart.TotalPrice))
	assert.Equal(t, -1, cart.FindItem("a"))
	assert.Equal(t, 1, cart.FindItem("c"))
}

func TestCart_CloneIsIndependent(t *testing.T) {
	cart := NewCart("u1", time.Now())
	cart.Items = append(cart.Items, CartItem{ProductID: "a", Quantity: 1, Price: dec("1")})

	clone := cart.Clone()
	clone.Items[0].Quantity = 5

	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestPriceOrder(t *testing.T) {
	tests := []struct {
		name     string
		items    string
		shipping string
		tax      string
		total    string
	}{
		{"below threshold pays flat fee", "55", "10", "5.5", "70.5"},
		{"exactly threshold still pays fee", "100", "10", "10", "120"},
		{"above threshold ships free", "100.01", "0", "10", "110.01"},
		{"tax rounds to cents", "19.99", "10", "2", "31.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PriceOrder(dec(tt.items))
			assert.True(t, dec(tt.shipping).Equal(p.ShippingPrice), "shipping %s", p.ShippingPrice)
			assert.True(t, dec(tt.tax).Equal(p.TaxPrice), "tax %s", p.TaxPrice)
			assert.True(t, dec(tt.total).Equal(p.TotalPrice), "total %s", p.TotalPrice)
			assert.True(t, p.ItemsPrice.Add(p.ShippingPrice).Add(p.TaxPrice).Equal(p.TotalPrice))
		})
	}
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusProcessing.Cancellable())
	assert.False(t, StatusShipped.Cancellable())
	assert.False(t, StatusDelivered.Cancellable())
	assert.False(t, StatusCancelled.Cancellable())

	assert.True(t, StatusShipped.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
}

func TestOrder_AmountMinor(t *testing.T) {
	o := &Order{TotalPrice: dec("70.505")}
	assert.Equal(t, int64(7051), o.AmountMinor())

	o.TotalPrice = dec("19.99")
	assert.Equal(t, int64(1999), o.AmountMinor())
}

func TestProduct_CalculateAverageRating(t *testing.T) {
	p := &Product{}
	p.CalculateAverageRating()
	assert.Equal(t, 0.0, p.Rating)
	assert.Equal(t, 0, p.NumReviews)

	p.Reviews = []Review{{UserID: "a", Rating: 5}, {UserID: "b", Rating: 2}}
	p.CalculateAverageRating()
	assert.Equal(t, 3.5, p.Rating)
	assert.Equal(t, 2, p.NumReviews)
	assert.True(t, p.HasReviewFrom("a"))
	assert.False(t, p.HasReviewFrom("c"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "home-garden", Slugify("Home & Garden"))
	assert.Equal(t, "electronics", Slugify("  Electronics "))
	assert.Equal(t, "usb-c-cables-2", Slugify("USB-C  Cables (2)"))
}

func TestShippingAddress_Validate(t *testing.T) {
	addr := ShippingAddress{Street: "1 Main", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}
	assert.NoError(t, addr.Validate())

	addr.ZipCode = ""
	assert.ErrorIs(t, addr.Validate(), ErrInvalidInput)
}
