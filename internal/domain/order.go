package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// OrderItem is a single product line of an order.
type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
}

// Order is a customer's purchase of one or more products.
type Order struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email      string             `json:"email" bson:"email"`
	Products   []OrderItem        `json:"products" bson:"products"`
	TotalPrice float64            `json:"totalPrice" bson:"totalPrice"`
	Status     OrderStatus        `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
