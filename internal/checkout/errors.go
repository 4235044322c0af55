package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrIdentityUnavailable = errors.New("no user identity for checkout")
	ErrCheckoutInProgress  = errors.New("checkout already in progress for this cart")
	ErrPersistence         = errors.New("order could not be persisted")
)
