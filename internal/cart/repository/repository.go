package repository

import (
	"context"
	"errors"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the interface for cart persistence.
// Consumers define this interface, not the MongoDB implementation.
// Carts are written whole: the service applies a pure transformation to the
// cart value and persists the result.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ReplaceCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}
