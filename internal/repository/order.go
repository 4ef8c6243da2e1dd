package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/boulevard/bicycles/internal/domain"
)

// OrderRepository handles order data access operations.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(collectionOrders)}
}

// Create inserts an order and returns it with its generated id.
func (r *OrderRepository) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &o, nil
}

// List returns the orders placed by email, newest first. An empty email
// lists every order.
func (r *OrderRepository) List(ctx context.Context, email string) ([]domain.Order, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := []domain.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// Revenue sums the total price of every order that was not cancelled.
func (r *OrderRepository) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": domain.OrderStatusCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalPrice"}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate revenue: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
