package handler

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/boulevard/bicycles/internal/domain"
)

type memoryProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]domain.Product
}

func newMemoryProducts(products ...domain.Product) *memoryProducts {
	m := &memoryProducts{items: map[primitive.ObjectID]domain.Product{}}
	for _, p := range products {
		m.items[p.ID] = p
	}
	return m
}

func (m *memoryProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.InStock = p.Quantity > 0
	m.items[p.ID] = p
	return &p, nil
}

func (m *memoryProducts) Find(_ context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Product{}
	for _, p := range m.items {
		if q.Search != "" && p.Name != q.Search {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memoryProducts) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memoryProducts) Update(_ context.Context, id primitive.ObjectID, u domain.ProductUpdate) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	m.items[id] = p
	return &p, nil
}

func (m *memoryProducts) SoftDelete(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(m.items, id)
	return &p, nil
}

func (m *memoryProducts) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.Quantity < qty {
		return nil, domain.ErrNotFound
	}
	p.Quantity -= qty
	p.InStock = p.Quantity > 0
	m.items[id] = p
	return &p, nil
}

func (m *memoryProducts) ReleaseStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.items[id]; ok {
		p.Quantity += qty
		p.InStock = true
		m.items[id] = p
	}
	return nil
}

type memoryOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *memoryOrders) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.orders = append(m.orders, o)
	return &o, nil
}

func (m *memoryOrders) List(_ context.Context, email string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if email == "" || o.Email == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryOrders) Revenue(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, o := range m.orders {
		total += o.TotalPrice
	}
	return total, nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[primitive.ObjectID]domain.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{
				Code:    11000,
				Message: fmt.Sprintf(`E11000 duplicate key error collection: bicycles.users index: email_1 dup key: { email: "%s" }`, u.Email),
			}}}
		}
	}
	u.ID = primitive.NewObjectID()
	m.users[u.ID] = u
	return &u, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryUsers) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUsers) SetActive(_ context.Context, id primitive.ObjectID, active bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	changed := u.IsActive != active
	u.IsActive = active
	m.users[id] = u
	return changed, nil
}

func (m *memoryUsers) setRole(email string, role domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Email == email {
			u.Role = role
			m.users[id] = u
		}
	}
}
