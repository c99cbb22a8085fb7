// Package cart manages the per-user shopping cart: mutable line items
// pending checkout.
package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart operations.
var (
	// ErrItemNotFound is returned when a line item does not exist in the
	// caller's cart.
	ErrItemNotFound = errors.New("item no encontrado en el carrito")
)

// Cart is a user's shopping cart. Exactly one cart exists per user, created
// lazily on first access; the row itself survives clearing.
type Cart struct {
	ID        string
	UsuarioID string
	Items     []Item
}

// Item is one product line inside a cart.
type Item struct {
	ID         string
	ProductoID string
	Cantidad   int
}

// Repository defines persistence operations for carts and their items.
type Repository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first
	// access. The returned cart includes its items.
	GetOrCreate(ctx context.Context, userID string) (*Cart, error)
	// Get returns the user's cart with items, or nil when the user has
	// never had one.
	Get(ctx context.Context, userID string) (*Cart, error)
	InsertItem(ctx context.Context, cartID string, item *Item) error
	// UpdateItemQuantity sets the quantity of an existing line.
	UpdateItemQuantity(ctx context.Context, itemID string, cantidad int) error
	// RemoveItem deletes a line from the given cart. It returns
	// ErrItemNotFound when the line is absent or belongs to another cart.
	RemoveItem(ctx context.Context, cartID, itemID string) error
	// Clear removes all lines. Clearing an already-empty cart is a no-op.
	Clear(ctx context.Context, cartID string) error
}
