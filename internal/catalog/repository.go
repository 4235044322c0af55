package catalog

import (
	"context"
	"errors"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

var ErrItemNotFound = errors.New("menu item not found")

// Repository defines read access to the menu catalog.
// Consumers define this interface, not the sqlite implementation.
type Repository interface {
	GetAllItems(ctx context.Context) ([]*domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	Close() error
	RunMigrations(migrationsPath string) error
}
