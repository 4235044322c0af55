package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

// CartService is the slice of the cart service checkout needs: read the cart,
// fence it while the order is being written, and clear it afterwards.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
	BeginSubmit(userID string) error
	EndSubmit(userID string)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type Service struct {
	carts  CartService
	orders OrderStore
	pricer domain.Pricer
}

func NewService(carts CartService, orders OrderStore, pricer domain.Pricer) *Service {
	return &Service{
		carts:  carts,
		orders: orders,
		pricer: pricer,
	}
}

// Checkout snapshots the user's cart into a pending order, persists it and
// clears the cart. The cart is fenced against line edits for the duration;
// on any failure it is left exactly as it was.
func (s *Service) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrIdentityUnavailable
	}

	if err := s.carts.BeginSubmit(userID); err != nil {
		return nil, ErrCheckoutInProgress
	}
	defer s.carts.EndSubmit(userID)

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := s.pricer.Price(*cart)
	order := domain.NewOrder(*cart, totals)

	if err := s.orders.CreateOrder(ctx, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The order is durable; an empty cart is the success state. A failed
	// clear leaves a stale cart behind, which is annoying but safe.
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		log.Printf("clear cart after checkout %s: %v", order.ID, err)
	}

	return &order, nil
}
