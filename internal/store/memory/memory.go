// Package memory is an in-process store used by tests and by local
// development when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

// New returns a Store backed by process memory
func New() *store.Store {
	return &store.Store{
		Products:   NewProductRepo(),
		Categories: NewCategoryRepo(),
		Carts:      NewCartRepo(),
		Wishlists:  NewWishlistRepo(),
		Orders:     NewOrderRepo(),
		Close:      func(context.Context) error { return nil },
	}
}

// ProductRepo keeps products in a map
type ProductRepo struct {
	mu    sync.RWMutex
	items map[string]*models.Product
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{items: make(map[string]*models.Product)}
}

func (r *ProductRepo) List(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	var matched []models.Product
	for _, p := range r.items {
		if matchProduct(p, f) {
			matched = append(matched, *p.Clone())
		}
	}
	r.mu.RUnlock()

	sortProducts(matched, f.Sort)

	total := int64(len(matched))
	page, limit := store.NormalizePage(f.Page, f.Limit)
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchProduct(p *models.Product, f models.ProductFilter) bool {
	if !f.IncludeInactive && !p.IsActive {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if len(f.Tags) > 0 && !hasAnyTag(p.Tags, f.Tags) {
		return false
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func sortProducts(list []models.Product, key string) {
	var less func(a, b *models.Product) bool
	switch key {
	case models.SortPriceAsc:
		less = func(a, b *models.Product) bool { return a.Price.LessThan(b.Price) }
	case models.SortPriceDesc:
		less = func(a, b *models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case models.SortRating:
		less = func(a, b *models.Product) bool { return a.Rating > b.Rating }
	case models.SortPopular:
		less = func(a, b *models.Product) bool { return a.Sold > b.Sold }
	default:
		less = func(a, b *models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if less(&list[i], &list[j]) {
			return true
		}
		if less(&list[j], &list[i]) {
			return false
		}
		return list[i].ID < list[j].ID
	})
}

func (r *ProductRepo) Get(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return models.ErrConflict
	}
	p.Version = 1
	r.items[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepo) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[p.ID]
	if !ok {
		return models.ErrProductNotFound
	}
	if cur.Version != p.Version {
		return models.ErrConflict
	}
	p.Version++
	r.items[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ProductRepo) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.items {
		if p.Category == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepo) RecordSale(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return models.ErrProductNotFound
	}
	p.Stock -= quantity
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.Sold += quantity
	p.Version++
	p.UpdatedAt = time.Now()
	return nil
}

// CategoryRepo keeps categories in a map
type CategoryRepo struct {
	mu    sync.RWMutex
	items map[string]*models.Category
}

func NewCategoryRepo() *CategoryRepo {
	return &CategoryRepo{items: make(map[string]*models.Category)}
}

func (r *CategoryRepo) List(_ context.Context, includeInactive bool) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Category{}
	for _, c := range r.items {
		if includeInactive || c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Get(_ context.Context, id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (r *CategoryRepo) slugTaken(slug, exceptID string) bool {
	for _, c := range r.items {
		if c.Slug == slug && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *CategoryRepo) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; ok || r.slugTaken(c.Slug, "") {
		return models.ErrConflict
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return models.ErrCategoryNotFound
	}
	if r.slugTaken(c.Slug, c.ID) {
		return models.ErrConflict
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return models.ErrCategoryNotFound
	}
	delete(r.items, id)
	return nil
}

// CartRepo keeps carts keyed by user
type CartRepo struct {
	mu    sync.RWMutex
	items map[string]*models.Cart
}

func NewCartRepo() *CartRepo {
	return &CartRepo{items: make(map[string]*models.Cart)}
}

func (r *CartRepo) Get(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[userID]
	if !ok {
		return nil, models.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (r *CartRepo) Create(_ context.Context, c *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.UserID]; ok {
		return models.ErrConflict
	}
	c.Version = 1
	r.items[c.UserID] = c.Clone()
	return nil
}

func (r *CartRepo) Update(_ context.Context, c *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[c.UserID]
	if !ok {
		return models.ErrCartNotFound
	}
	if cur.Version != c.Version {
		return models.ErrConflict
	}
	c.Version++
	r.items[c.UserID] = c.Clone()
	return nil
}

func (r *CartRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.items {
		if len(c.Items) > 0 {
			n++
		}
	}
	return n, nil
}

// WishlistRepo keeps saved product ids per user in insertion order
type WishlistRepo struct {
	mu    sync.RWMutex
	items map[string][]models.WishlistItem
}

func NewWishlistRepo() *WishlistRepo {
	return &WishlistRepo{items: make(map[string][]models.WishlistItem)}
}

func (r *WishlistRepo) Items(_ context.Context, userID string) ([]models.WishlistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.WishlistItem{}, r.items[userID]...), nil
}

func (r *WishlistRepo) Add(_ context.Context, userID string, item models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items[userID] {
		if it.ProductID == item.ProductID {
			return nil
		}
	}
	r.items[userID] = append(r.items[userID], item)
	return nil
}

func (r *WishlistRepo) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[userID][:0]
	for _, it := range r.items[userID] {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	r.items[userID] = kept
	return nil
}

// OrderRepo keeps orders in a map
type OrderRepo struct {
	mu    sync.RWMutex
	items map[string]*models.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{items: make(map[string]*models.Order)}
}

func (r *OrderRepo) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; ok {
		return models.ErrConflict
	}
	o.Version = 1
	r.items[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepo) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepo) Update(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[o.ID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if cur.Version != o.Version {
		return models.ErrConflict
	}
	o.Version++
	r.items[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepo) newestFirst(keep func(*models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range r.items {
		if keep(o) {
			out = append(out, *o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(o *models.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepo) List(_ context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	all := r.newestFirst(func(o *models.Order) bool { return f.Status == "" || o.Status == f.Status })
	r.mu.RUnlock()

	total := int64(len(all))
	page, limit := store.NormalizePage(f.Page, f.Limit)
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Order{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *OrderRepo) Summary(_ context.Context) (*models.OrderSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &models.OrderSummary{Revenue: decimal.Zero, ByStatus: map[models.OrderStatus]int64{}}
	for _, o := range r.items {
		s.TotalOrders++
		s.ByStatus[o.Status]++
		if o.IsPaid {
			s.PaidOrders++
			s.Revenue = s.Revenue.Add(o.TotalPrice)
		}
	}
	return s, nil
}
