package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/events"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

// OrderService handles the order lifecycle
type OrderService struct {
	orders    store.OrderRepository
	carts     store.CartRepository
	products  store.ProductRepository
	publisher events.Publisher
	metrics   *metrics.AppMetrics
	cache     cache.Cache
}

// NewOrderService creates a new order service
func NewOrderService(orders store.OrderRepository, carts store.CartRepository, products store.ProductRepository, pub events.Publisher, m *metrics.AppMetrics) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		products:  products,
		publisher: pub,
		metrics:   m,
	}
}

// SetProductCache lets MarkPaid evict products whose stock it changed
func (s *OrderService) SetProductCache(c cache.Cache) {
	s.cache = c
}

// CreateOrder snapshots the user's cart into a pending order. The cart
// itself is left untouched; callers clear it once the order exists.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, models.InvalidInput("payment method is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, models.ErrNotFound) || (err == nil && cart.IsEmpty()) {
		return nil, models.ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	cart.CalculateTotals()

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		p, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot product %s: %w", line.ProductID, err)
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	pricing := models.PriceOrder(cart.TotalPrice)
	ts := now()
	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      pricing.ItemsPrice,
		ShippingPrice:   pricing.ShippingPrice,
		TaxPrice:        pricing.TaxPrice,
		TotalPrice:      pricing.TotalPrice,
		Status:          models.StatusPending,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.OrdersCreated.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("order_status", string(order.Status)),
		attribute.String("payment_method", order.PaymentMethod),
	))
	log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("total", order.TotalPrice.StringFixed(2)).
		Int("items", len(items)).
		Msg("order created")

	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// GetOrder returns an order visible to who: its owner or an admin
func (s *OrderService) GetOrder(ctx context.Context, who models.Identity, id string) (*models.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != who.UserID && !who.IsAdmin() {
		return nil, models.ErrForbidden
	}
	return o, nil
}

// ListUserOrders returns the user's orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrders returns one page of all orders, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, f models.OrderFilter) (*models.OrderPage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.InvalidInput("unknown status %q", f.Status)
	}
	f.Page, f.Limit = store.NormalizePage(f.Page, f.Limit)
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &models.OrderPage{
		Orders:     orders,
		Pagination: models.NewPagination(f.Page, f.Limit, total),
	}, nil
}

// AllOrders walks every page of orders matching status
func (s *OrderService) AllOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var all []models.Order
	for page := 1; ; page++ {
		res, err := s.ListOrders(ctx, models.OrderFilter{Status: status, Page: page, Limit: store.MaxLimit})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Orders...)
		if page >= res.Pagination.Pages {
			return all, nil
		}
	}
}

// update runs a version-checked read-modify-write on one order
func (s *OrderService) update(ctx context.Context, id string, fn func(*models.Order) error) (*models.Order, error) {
	var saved *models.Order
	err := retryOnConflict(func() error {
		o, err := s.orders.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		o.UpdatedAt = now()
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		saved = o
		return nil
	})
	return saved, err
}

// UpdateStatus is the admin status change. Any known status may follow any
// other; moving to delivered stamps DeliveredAt.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, models.InvalidInput("unknown status %q", req.Status)
	}
	o, err := s.update(ctx, id, func(o *models.Order) error {
		o.Status = req.Status
		if req.TrackingNumber != "" {
			o.TrackingNumber = req.TrackingNumber
		}
		if req.Status == models.StatusDelivered && o.DeliveredAt == nil {
			t := now()
			o.DeliveredAt = &t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransitions.Add(ctx, 1, s.metrics.Attrs(attribute.String("order_status", string(o.Status))))
	log.Info().Str("order_id", id).Str("status", string(o.Status)).Msg("order status updated")
	s.publish(ctx, events.OrderStatusChanged, o)
	return o, nil
}

// CancelOrder lets the owner cancel an order that has not shipped
func (s *OrderService) CancelOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	o, err := s.update(ctx, id, func(o *models.Order) error {
		if o.UserID != userID {
			return models.ErrForbidden
		}
		if !o.Status.Cancellable() {
			return fmt.Errorf("%w: order is %s", models.ErrInvalidState, o.Status)
		}
		o.Status = models.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransitions.Add(ctx, 1, s.metrics.Attrs(attribute.String("order_status", string(o.Status))))
	log.Info().Str("order_id", id).Str("user_id", userID).Msg("order cancelled")
	s.publish(ctx, events.OrderCancelled, o)
	return o, nil
}

// MarkPaid records a successful payment. A pending order moves to
// processing; an order that is already paid is returned unchanged.
// Inventory is adjusted once, on the first payment.
func (s *OrderService) MarkPaid(ctx context.Context, id string, receipt models.PaymentResult) (*models.Order, error) {
	o, err := s.update(ctx, id, func(o *models.Order) error {
		if o.IsPaid {
			return errAlreadyPaid
		}
		t := now()
		o.IsPaid = true
		o.PaidAt = &t
		o.PaymentResult = &receipt
		if o.Status == models.StatusPending {
			o.Status = models.StatusProcessing
		}
		return nil
	})
	if errors.Is(err, errAlreadyPaid) {
		log.Info().Str("order_id", id).Msg("order already paid")
		return s.orders.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	for _, item := range o.OrderItems {
		if err := s.products.RecordSale(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).Str("order_id", id).Str("product_id", item.ProductID).Msg("failed to adjust inventory")
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, productCacheKey(item.ProductID)); err != nil {
				log.Warn().Err(err).Str("product_id", item.ProductID).Msg("product cache invalidation failed")
			}
		}
	}
	revenue, _ := o.TotalPrice.Float64()
	s.metrics.RevenueTotal.Add(ctx, revenue, s.metrics.Attrs(attribute.String("payment_method", o.PaymentMethod)))
	s.metrics.OrderTransitions.Add(ctx, 1, s.metrics.Attrs(attribute.String("order_status", string(o.Status))))
	log.Info().Str("order_id", id).Str("payment_id", receipt.ID).Msg("order paid")
	s.publish(ctx, events.OrderPaid, o)
	return o, nil
}

var errAlreadyPaid = errors.New("order already paid")

// publish emits an order event; delivery failures are logged, not returned
func (s *OrderService) publish(ctx context.Context, routingKey string, o *models.Order) {
	outcome := "ok"
	if err := s.publisher.Publish(ctx, routingKey, events.NewOrderEvent(o, now())); err != nil {
		outcome = "error"
		log.Error().Err(err).Str("order_id", o.ID).Str("routing_key", routingKey).Msg("failed to publish order event")
	}
	s.metrics.EventsPublished.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("routing_key", routingKey),
		attribute.String("outcome", outcome),
	))
}
