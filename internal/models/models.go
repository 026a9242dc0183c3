package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Image is a product image hosted by an external storage provider
type Image struct {
	URL       string `json:"url" bson:"url"`
	StorageID string `json:"storageId" bson:"storageId"`
}

// Review is a single user review embedded in a product
type Review struct {
	UserID    string    `json:"userId" bson:"userId"`
	Name      string    `json:"name" bson:"name"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Product represents a product in the catalog
type Product struct {
	ID             string           `json:"id" bson:"_id"`
	Name           string           `json:"name" bson:"name"`
	Description    string           `json:"description" bson:"description"`
	Price          decimal.Decimal  `json:"price" bson:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty" bson:"compareAtPrice,omitempty"`
	Stock          int              `json:"stock" bson:"stock"`
	Sold           int              `json:"sold" bson:"sold"`
	Category       string           `json:"category,omitempty" bson:"category,omitempty"`
	Images         []Image          `json:"images" bson:"images"`
	Rating         float64          `json:"rating" bson:"rating"`
	NumReviews     int              `json:"numReviews" bson:"numReviews"`
	Reviews        []Review         `json:"reviews" bson:"reviews"`
	Featured       bool             `json:"featured" bson:"featured"`
	IsActive       bool             `json:"isActive" bson:"isActive"`
	Brand          string           `json:"brand,omitempty" bson:"brand,omitempty"`
	Tags           []string         `json:"tags" bson:"tags"`
	Version        int64            `json:"version" bson:"version"`
	CreatedAt      time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// Category groups products
type Category struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description" bson:"description"`
	IsActive    bool      `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CartItem is a line in a cart. Price is captured when the line is first added.
type CartItem struct {
	ProductID string          `json:"productId" bson:"productId"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	Price     decimal.Decimal `json:"price" bson:"price"`
}

// Cart represents a user's shopping cart; one per user
type Cart struct {
	UserID     string          `json:"userId" bson:"_id"`
	Items      []CartItem      `json:"items" bson:"items"`
	TotalItems int             `json:"totalItems" bson:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice" bson:"totalPrice"`
	Version    int64           `json:"version" bson:"version"`
	CreatedAt  time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// WishlistItem is a product a user saved for later
type WishlistItem struct {
	ProductID string    `json:"productId" bson:"productId"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

// ShippingAddress is where an order ships to
type ShippingAddress struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipCode" bson:"zipCode"`
	Country string `json:"country" bson:"country"`
}

// OrderItem is a value snapshot of a cart line taken at order creation
type OrderItem struct {
	ProductID string          `json:"productId" bson:"productId"`
	Name      string          `json:"name" bson:"name"`
	Image     string          `json:"image" bson:"image"`
	Price     decimal.Decimal `json:"price" bson:"price"`
	Quantity  int             `json:"quantity" bson:"quantity"`
}

// PaymentResult is the processor receipt stored on a paid order
type PaymentResult struct {
	ID         string `json:"id" bson:"id"`
	Status     string `json:"status" bson:"status"`
	UpdateTime string `json:"updateTime" bson:"updateTime"`
}

// Order represents a placed order
type Order struct {
	ID              string          `json:"id" bson:"_id"`
	UserID          string          `json:"userId" bson:"userId"`
	OrderItems      []OrderItem     `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" bson:"paymentMethod"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice" bson:"itemsPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice" bson:"shippingPrice"`
	TaxPrice        decimal.Decimal `json:"taxPrice" bson:"taxPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice" bson:"totalPrice"`
	IsPaid          bool            `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	Status          OrderStatus     `json:"status" bson:"status"`
	TrackingNumber  string          `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	Version         int64           `json:"version" bson:"version"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Identity is the authenticated caller as reported by the upstream auth layer
type Identity struct {
	UserID string
	Name   string
	Role   string
}

// RoleAdmin is the role allowed on back-office routes
const RoleAdmin = "admin"

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ProductFilter holds catalog query parameters
type ProductFilter struct {
	Category        string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	MinRating       *float64
	Search          string
	Brand           string
	Tags            []string
	Featured        bool
	IncludeInactive bool
	Sort            string
	Page            int
	Limit           int
}

// Sort keys accepted by ProductFilter.Sort
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortPopular   = "popular"
)

// Pagination describes a page of results
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count for total results
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ProductPage is a page of catalog results
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// OrderFilter holds admin order listing parameters
type OrderFilter struct {
	Status OrderStatus
	Page   int
	Limit  int
}

// OrderPage is a page of orders
type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// OrderSummary aggregates order counts and paid revenue
type OrderSummary struct {
	TotalOrders int64                 `json:"totalOrders"`
	PaidOrders  int64                 `json:"paidOrders"`
	Revenue     decimal.Decimal       `json:"revenue"`
	ByStatus    map[OrderStatus]int64 `json:"byStatus"`
}

// Dashboard is the admin overview
type Dashboard struct {
	Orders        OrderSummary `json:"orders"`
	TotalProducts int64        `json:"totalProducts"`
	Categories    int          `json:"categories"`
	ActiveCarts   int64        `json:"activeCarts"`
	RecentOrders  []Order      `json:"recentOrders"`
}

// AddToCartRequest represents a request to add item to cart
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest represents a quantity change on a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// UpdateOrderStatusRequest is the admin status change body
type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"trackingNumber"`
}

// ProductRequest is the admin create/update body. Nil fields are left
// unchanged on update.
type ProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Stock          *int             `json:"stock"`
	Category       *string          `json:"category"`
	Images         []Image          `json:"images"`
	Featured       *bool            `json:"featured"`
	IsActive       *bool            `json:"isActive"`
	Brand          *string          `json:"brand"`
	Tags           []string         `json:"tags"`
}

// CategoryRequest is the admin create/update body for categories
type CategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// ReviewRequest is the body of a product review
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// PaymentIntentRequest asks for a processor intent for an order
type PaymentIntentRequest struct {
	OrderID string `json:"orderId"`
}

// PaymentIntentResponse is returned to the client to complete payment
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// PaymentConfig is the public processor configuration
type PaymentConfig struct {
	PublishableKey string `json:"publishableKey"`
	Currency       string `json:"currency"`
}
