package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/boulevard/bicycles/internal/domain"
)

// ProductStore defines the product data access interface consumed by ProductService.
type ProductStore interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Find(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, u domain.ProductUpdate) (*domain.Product, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []domain.Product
	Total    int64
	Page     int
	Limit    int
}

// ProductService handles the bicycle catalogue.
type ProductService struct {
	products ProductStore
}

// NewProductService creates a new ProductService.
func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

// Create saves a new product on behalf of an admin.
func (s *ProductService) Create(ctx context.Context, by domain.Principal, p domain.Product) (*domain.Product, error) {
	creator, err := domain.ParseID(by.UserID)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = creator

	product, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// List returns one page of products matching q. A search term without any
// match is reported as not found.
func (s *ProductService) List(ctx context.Context, q domain.ProductQuery) (*ProductPage, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, domain.BadRequest("InvalidRange",
			fmt.Sprintf("Minimum price %g is greater than maximum price %g!", *q.MinPrice, *q.MaxPrice),
			"invalid_range", *q.MinPrice, "price")
	}

	products, total, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if q.Search != "" && total == 0 {
		return nil, domain.NewStatusError("NotMatchedError",
			fmt.Sprintf("No bicycle matched with search term: %s!", q.Search),
			http.StatusNotFound, "not_found", q.Search, "search_products")
	}

	return &ProductPage{Products: products, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Get retrieves a single product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("No bicycle found with id: %s!", id), id, "get_product")
	}
	return product, err
}

// Update applies a partial update to a product.
func (s *ProductService) Update(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	if u.Empty() {
		return nil, domain.BadRequest("EmptyUpdate", "Nothing to update!", "empty_update", nil, "update_product")
	}

	product, err := s.products.Update(ctx, oid, u)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("Cannot update specified bicycle with id: %s!", id), id, "update_product")
	}
	return product, err
}

// Delete flags a product as deleted.
func (s *ProductService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	product, err := s.products.SoftDelete(ctx, oid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("Cannot delete specified bicycle with id: %s!", id), id, "delete_product")
	}
	return product, err
}
