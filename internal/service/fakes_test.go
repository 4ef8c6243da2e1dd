package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/boulevard/bicycles/internal/domain"
)

var errStore = errors.New("store unavailable")

type fakeProducts struct {
	items    map[primitive.ObjectID]*domain.Product
	total    int64
	released map[primitive.ObjectID]int
	err      error
	// stolen products are sold to someone else between read and reservation.
	stolen map[primitive.ObjectID]bool
}

func newFakeProducts(products ...domain.Product) *fakeProducts {
	f := &fakeProducts{
		items:    map[primitive.ObjectID]*domain.Product{},
		released: map[primitive.ObjectID]int{},
		stolen:   map[primitive.ObjectID]bool{},
	}
	for i := range products {
		p := products[i]
		f.items[p.ID] = &p
	}
	f.total = int64(len(products))
	return f
}

func (f *fakeProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = primitive.NewObjectID()
	f.items[p.ID] = &p
	return &p, nil
}

func (f *fakeProducts) Find(_ context.Context, _ domain.ProductQuery) ([]domain.Product, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	out := []domain.Product{}
	for _, p := range f.items {
		out = append(out, *p)
	}
	return out, f.total, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Update(_ context.Context, id primitive.ObjectID, u domain.ProductUpdate) (*domain.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) SoftDelete(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(f.items, id)
	p.IsDeleted = true
	return p, nil
}

func (f *fakeProducts) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) (*domain.Product, error) {
	p, ok := f.items[id]
	if !ok || f.stolen[id] || p.Quantity < qty {
		return nil, domain.ErrNotFound
	}
	p.Quantity -= qty
	p.InStock = p.Quantity > 0
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.released[id] += qty
	if p, ok := f.items[id]; ok {
		p.Quantity += qty
		p.InStock = true
	}
	return nil
}

type fakeOrders struct {
	created []domain.Order
	listed  string
	revenue float64
	err     error
	// abort cancels the request while the order is being written.
	abort context.CancelFunc
}

func (f *fakeOrders) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if f.abort != nil {
		f.abort()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	o.ID = primitive.NewObjectID()
	f.created = append(f.created, o)
	return &o, nil
}

func (f *fakeOrders) List(_ context.Context, email string) ([]domain.Order, error) {
	f.listed = email
	return []domain.Order{}, f.err
}

func (f *fakeOrders) Revenue(_ context.Context) (float64, error) {
	return f.revenue, f.err
}

type fakeUsers struct {
	byID      map[primitive.ObjectID]*domain.User
	unchanged bool
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[primitive.ObjectID]*domain.User{}}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u domain.User) (*domain.User, error) {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
		}
	}
	u.ID = primitive.NewObjectID()
	f.byID[u.ID] = &u
	return &u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) SetActive(_ context.Context, id primitive.ObjectID, active bool) (bool, error) {
	u, ok := f.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if f.unchanged {
		return false, nil
	}
	u.IsActive = active
	return true, nil
}

func requireStatus(err error) *domain.StatusError {
	var se *domain.StatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
