package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shopmall-api/internal/events"
	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the three tables
type fakeStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	clock    time.Time
	users    map[uuid.UUID]model.User
	products map[uuid.UUID]model.Product
	orders   map[uuid.UUID]model.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[uuid.UUID]model.User{},
		products: map[uuid.UUID]model.Product{},
		orders:   map[uuid.UUID]model.Order{},
	}
}

// stamp assigns an id and a strictly increasing creation time
func (s *fakeStore) stamp(base *model.BaseModel) {
	s.clock = s.clock.Add(time.Second)
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	base.CreatedAt = s.clock
	base.UpdatedAt = s.clock
}

func (s *fakeStore) userRepo() repository.UserRepository {
	return &fakeUserRepo{s}
}

func (s *fakeStore) productRepo() repository.ProductRepository {
	return &fakeProductRepo{s}
}

func (s *fakeStore) orderRepo() repository.OrderRepository {
	return &fakeOrderRepo{s}
}

func (s *fakeStore) transactor() repository.Transactor {
	return &fakeTransactor{s}
}

func (s *fakeStore) product(id uuid.UUID) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindBySocialIdentity(provider model.SocialProvider, socialID string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.SocialProvider != nil && *u.SocialProvider == provider && u.SocialID != nil && *u.SocialID == socialID {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll() ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.stamp(&user.BaseModel)
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.users, id)
	return nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.stamp(&product.BaseModel)
	r.s.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindBySKU(sku string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sku = model.NormalizeSKU(sku)
	for _, p := range r.s.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) List(filter repository.ProductFilter, offset, limit int) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var matched []model.Product
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.Product{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeProductRepo) Update(product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == product.SKU && p.ID != product.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(id uuid.UUID, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.products[id] = p
	return true, nil
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&order.BaseModel)
	r.s.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) FindByUser(userID uuid.UUID, offset, limit int) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.Order{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// Update copies only the named columns, like a Select(...).Updates(...) would
func (r *fakeOrderRepo) Update(order *model.Order, columns ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, col := range columns {
		switch col {
		case "status":
			stored.Status = order.Status
		case "shipped_date":
			stored.ShippedDate = order.ShippedDate
		case "tracking_number":
			stored.TrackingNumber = order.TrackingNumber
		case "delivered_date":
			stored.DeliveredDate = order.DeliveredDate
		case "cancelled_date":
			stored.CancelledDate = order.CancelledDate
		case "cancelled_reason":
			stored.CancelledReason = order.CancelledReason
		case "payment_status":
			stored.PaymentStatus = order.PaymentStatus
		case "payment_date":
			stored.PaymentDate = order.PaymentDate
		case "payment_id":
			stored.PaymentID = order.PaymentID
		default:
			panic("fakeOrderRepo: unknown column " + col)
		}
	}
	r.s.orders[order.ID] = stored
	return nil
}

// fakeTransactor serializes transactions and restores products and orders
// when fn fails
type fakeTransactor struct{ s *fakeStore }

func (t *fakeTransactor) WithinTransaction(fn func(products repository.ProductRepository, orders repository.OrderRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	products := make(map[uuid.UUID]model.Product, len(t.s.products))
	for k, v := range t.s.products {
		products[k] = v
	}
	orders := make(map[uuid.UUID]model.Order, len(t.s.orders))
	for k, v := range t.s.orders {
		orders[k] = v
	}
	t.s.mu.Unlock()

	if err := fn(t.s.productRepo(), t.s.orderRepo()); err != nil {
		t.s.mu.Lock()
		t.s.products = products
		t.s.orders = orders
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fakeVerifier struct {
	identity *SocialIdentity
	err      error
}

func (v *fakeVerifier) Verify(context.Context, string) (*SocialIdentity, error) {
	return v.identity, v.err
}

func ptr[T any](v T) *T { return &v }
