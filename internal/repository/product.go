package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/boulevard/bicycles/internal/domain"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 100000
)

var sortableFields = map[string]bool{
	"name":      true,
	"brand":     true,
	"price":     true,
	"quantity":  true,
	"createdAt": true,
	"updatedAt": true,
}

// ProductRepository handles product data access operations.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collectionProducts)}
}

// Create inserts a product and returns it with its generated id.
func (r *ProductRepository) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.InStock = p.Quantity > 0
	p.IsDeleted = false
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// Find returns one page of non-deleted products matching q and the total
// number of matches.
func (r *ProductRepository) Find(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	filter := productFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	cur, err := r.coll.Find(ctx, filter, productFindOptions(q))
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	products := []domain.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

// FindByID retrieves a non-deleted product.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&p)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// Update applies the non-nil fields of u and returns the updated product.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, u domain.ProductUpdate) (*domain.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	fields, err := bson.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode product update: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(fields, &m); err != nil {
		return nil, fmt.Errorf("encode product update: %w", err)
	}
	for k, v := range m {
		set[k] = v
	}
	if u.Quantity != nil && u.InStock == nil {
		set["inStock"] = *u.Quantity > 0
	}

	var p domain.Product
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// SoftDelete flags a product as deleted and returns it.
func (r *ProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// ReserveStock takes qty units of a product if that many are available.
// It returns domain.ErrNotFound when the product is missing or short.
func (r *ProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (*domain.Product, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"quantity":  bson.M{"$subtract": bson.A{"$quantity", qty}},
			"updatedAt": "$$NOW",
		}}},
		{{Key: "$set", Value: bson.M{"inStock": bson.M{"$gt": bson.A{"$quantity", 0}}}}},
	}

	var p domain.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": false, "quantity": bson.M{"$gte": qty}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reserve stock of %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// ReleaseStock returns qty units to a product.
func (r *ProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"quantity": qty},
			"$set": bson.M{"inStock": true, "updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("release stock of %s: %w", id.Hex(), err)
	}
	return nil
}

func productFilter(q domain.ProductQuery) bson.M {
	filter := bson.M{"isDeleted": false}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
			bson.M{"type": pattern},
		}
	}

	if q.Type != "" {
		filter["type"] = q.Type
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}

	return filter
}

func productFindOptions(q domain.ProductQuery) *options.FindOptions {
	sortBy := q.SortBy
	if !sortableFields[sortBy] {
		sortBy = "createdAt"
	}
	order := -1
	if q.SortOrder == domain.SortAsc {
		order = 1
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return options.Find().
		SetSort(bson.D{{Key: sortBy, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit))
}
