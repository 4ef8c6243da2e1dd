package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/boulevard/bicycles/internal/domain"
)

// OrderStore defines the order data access interface consumed by OrderService.
type OrderStore interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	List(ctx context.Context, email string) ([]domain.Order, error)
	Revenue(ctx context.Context) (float64, error)
}

// StockStore defines the inventory operations consumed by OrderService.
type StockStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (*domain.Product, error)
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

// OrderLine is a requested product and quantity.
type OrderLine struct {
	Product  string
	Quantity int
}

// OrderService handles order placement and reporting.
type OrderService struct {
	orders OrderStore
	stock  StockStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders OrderStore, stock StockStore) *OrderService {
	return &OrderService{orders: orders, stock: stock}
}

const createOrderPath = "create_order"

type reservation struct {
	id  primitive.ObjectID
	qty int
}

// Create places an order for the caller. Lines naming the same product are
// merged. Stock is reserved line by line and released again if any line
// cannot be fulfilled.
func (s *OrderService) Create(ctx context.Context, by domain.Principal, lines []OrderLine) (*domain.Order, error) {
	if by.Email == "" {
		return nil, domain.Unauthorized("You must login first!", createOrderPath)
	}

	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	var reserved []reservation
	items := make([]domain.OrderItem, 0, len(merged))
	var total float64

	for _, line := range merged {
		product, err := s.reserve(ctx, line)
		if err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, line)

		items = append(items, domain.OrderItem{Product: product.ID, Quantity: line.qty, Price: product.Price})
		total += product.Price * float64(line.qty)
	}

	order, err := s.orders.Create(ctx, domain.Order{
		Email:      by.Email,
		Products:   items,
		TotalPrice: total,
		Status:     domain.OrderStatusPending,
	})
	if err != nil {
		s.release(ctx, reserved)
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (s *OrderService) reserve(ctx context.Context, line reservation) (*domain.Product, error) {
	product, err := s.stock.FindByID(ctx, line.id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("No bicycle found with id: %s!", line.id.Hex()), line.id.Hex(), createOrderPath)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", line.id.Hex(), err)
	}

	if product.Quantity < line.qty {
		return nil, insufficientStock(product, line.qty)
	}

	reserved, err := s.stock.ReserveStock(ctx, line.id, line.qty)
	if errors.Is(err, domain.ErrNotFound) {
		// Sold between the read and the reservation.
		return nil, insufficientStock(product, line.qty)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve stock: %w", err)
	}
	return reserved, nil
}

// release returns reserved units even when the request context is already done.
func (s *OrderService) release(ctx context.Context, reserved []reservation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	for _, r := range reserved {
		if err := s.stock.ReleaseStock(ctx, r.id, r.qty); err != nil {
			slog.Error("failed to release reserved stock", "product", r.id.Hex(), "quantity", r.qty, "error", err)
		}
	}
}

const releaseTimeout = 5 * time.Second

func insufficientStock(p *domain.Product, requested int) *domain.StatusError {
	return domain.Conflict("InsufficientStock",
		fmt.Sprintf("Only %d unit(s) of %s left in stock, requested %d!", p.Quantity, p.Name, requested),
		"insufficient_stock", requested, createOrderPath)
}

func mergeLines(lines []OrderLine) ([]reservation, error) {
	if len(lines) == 0 {
		return nil, domain.BadRequest("EmptyOrder", "An order needs at least one product!", "empty_order", nil, createOrderPath)
	}

	index := make(map[primitive.ObjectID]int, len(lines))
	merged := make([]reservation, 0, len(lines))
	for _, line := range lines {
		id, err := domain.ParseID(line.Product)
		if err != nil {
			return nil, err
		}
		if line.Quantity < 1 {
			return nil, domain.BadRequest("InvalidQuantity", "Quantity must be at least 1!", "invalid_quantity", line.Quantity, createOrderPath)
		}

		if i, ok := index[id]; ok {
			merged[i].qty += line.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, reservation{id: id, qty: line.Quantity})
	}
	return merged, nil
}

// List returns the caller's orders, or every order for an admin.
func (s *OrderService) List(ctx context.Context, by domain.Principal) ([]domain.Order, error) {
	email := by.Email
	if by.Role == domain.RoleAdmin {
		email = ""
	}

	orders, err := s.orders.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Revenue returns the total price of all orders that were not cancelled.
func (s *OrderService) Revenue(ctx context.Context) (float64, error) {
	total, err := s.orders.Revenue(ctx)
	if err != nil {
		return 0, fmt.Errorf("calculate revenue: %w", err)
	}
	return total, nil
}
