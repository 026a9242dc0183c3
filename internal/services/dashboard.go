package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

const recentOrdersLimit = 5

// DashboardService builds the admin overview
type DashboardService struct {
	store *store.Store
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(st *store.Store) *DashboardService {
	return &DashboardService{store: st}
}

// Dashboard gathers order, catalog and cart figures concurrently
func (s *DashboardService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var d models.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.store.Orders.Summary(ctx)
		if err != nil {
			return fmt.Errorf("failed to summarize orders: %w", err)
		}
		d.Orders = *summary
		return nil
	})
	g.Go(func() error {
		_, total, err := s.store.Products.List(ctx, models.ProductFilter{IncludeInactive: true, Page: 1, Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		d.TotalProducts = total
		return nil
	})
	g.Go(func() error {
		categories, err := s.store.Categories.List(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		d.Categories = len(categories)
		return nil
	})
	g.Go(func() error {
		n, err := s.store.Carts.CountActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to count active carts: %w", err)
		}
		d.ActiveCarts = n
		return nil
	})
	g.Go(func() error {
		recent, _, err := s.store.Orders.List(ctx, models.OrderFilter{Page: 1, Limit: recentOrdersLimit})
		if err != nil {
			return fmt.Errorf("failed to list recent orders: %w", err)
		}
		d.RecentOrders = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []models.Order{}
	}
	return &d, nil
}
