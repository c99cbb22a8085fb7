// Package order implements the order lifecycle: the cart-to-order
// transaction and the state machine that follows an order through payment,
// fulfillment, and delivery.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/tracking"
)

// Order is an immutable-after-creation purchase record derived from a cart.
// Only Estado changes after creation; the total and lines are frozen
// snapshots of checkout time.
type Order struct {
	ID            string
	UsuarioID     string
	Total         decimal.Decimal
	Estado        Status
	FechaCreacion time.Time
	Lines         []Line
}

// Line is one product+quantity entry inside an order. PrecioEnElMomento is
// the unit price captured at order-creation time; it is never recalculated,
// regardless of later price or promotion changes.
type Line struct {
	ProductoID        string
	Cantidad          int
	PrecioEnElMomento decimal.Decimal
}

// Repository defines persistence operations for orders. The multi-row
// methods (CreateFromCart, ConfirmPayment, Deliver) are each one atomic
// unit: all of their writes commit together or not at all.
type Repository interface {
	// CreateFromCart persists the order and its lines, decrements product
	// stock with a guarded update, and clears the source cart. When a
	// guarded stock update matches no row it fails with
	// catalog.InsufficientStockError and nothing is persisted.
	CreateFromCart(ctx context.Context, o *Order, cartID string) error
	// GetByID returns the order with its lines, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, st Status) error
	// ConfirmPayment moves the order to pagado and creates its document and
	// tracking record.
	ConfirmPayment(ctx context.Context, orderID string, doc *document.Document, trk *tracking.Tracking) error
	// Deliver marks the tracking record entregado (clearing coordinates)
	// and the order entregado.
	Deliver(ctx context.Context, orderID string) error
}

// CheckoutResult is returned by a successful checkout.
type CheckoutResult struct {
	Order *Order
	// RedirectURL is the client-facing payment-confirmation reference.
	RedirectURL string
}
