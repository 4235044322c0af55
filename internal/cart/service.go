package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sopissedoff/my-restaurant-app-online/internal/cache"
	"github.com/sopissedoff/my-restaurant-app-online/internal/cart/repository"
	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

var (
	// ErrLineNotFound means the addressed line index does not exist.
	ErrLineNotFound = errors.New("line not found in cart")
	// ErrCartSubmitting means a checkout is in flight for this cart and
	// line edits are rejected until it resolves.
	ErrCartSubmitting = errors.New("cart is being checked out")
)

// Service owns per-user cart state. Every mutation loads the cart, applies
// the pure domain transformation and persists the whole result, so the
// merge/identity rules live in exactly one place (internal/domain).
type Service struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede

	gate submitGate
}

func NewService(repo repository.CartRepository, cache cache.CartCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			// A user without a cart document has an empty cart, not an error.
			return &domain.Cart{
				UserID:    userID,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddLine merges or appends the line per the domain identity rule and
// returns the updated cart.
func (s *Service) AddLine(ctx context.Context, userID string, line domain.CartLine) (*domain.Cart, error) {
	if s.gate.held(userID) {
		return nil, ErrCartSubmitting
	}

	current, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}
	next := current.AddLine(line)
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// UpdateQuantity replaces the addressed line's quantity; zero or below
// removes the line, exactly like RemoveLine.
func (s *Service) UpdateQuantity(ctx context.Context, userID string, index, quantity int) (*domain.Cart, error) {
	if s.gate.held(userID) {
		return nil, ErrCartSubmitting
	}

	current, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(current.Lines) {
		return nil, ErrLineNotFound
	}

	next := current.UpdateQuantity(index, quantity)
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID string, index int) (*domain.Cart, error) {
	if s.gate.held(userID) {
		return nil, ErrCartSubmitting
	}

	current, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(current.Lines) {
		return nil, ErrLineNotFound
	}

	next := current.RemoveLine(index)
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// ClearCart empties the cart. It is deliberately not gated: during the brief
// submit window a clear either precedes the snapshot or follows persistence,
// both harmless.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// BeginSubmit marks the cart as submitting; line edits are rejected until
// EndSubmit. This is the "one checkout in flight per cart" guarantee.
func (s *Service) BeginSubmit(userID string) error {
	if !s.gate.acquire(userID) {
		return ErrCartSubmitting
	}
	return nil
}

func (s *Service) EndSubmit(userID string) {
	s.gate.release(userID)
}

func (s *Service) persist(ctx context.Context, cart *domain.Cart) error {
	if err := s.repo.ReplaceCart(ctx, cart); err != nil {
		log.Printf("repo replace cart error: %v", err)
		return err
	}
	s.invalidateCache(cart.UserID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
