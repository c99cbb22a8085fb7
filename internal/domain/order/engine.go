package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/domain/cart"
	"github.com/chocomania/backend/internal/domain/catalog"
	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/notification"
	"github.com/chocomania/backend/internal/domain/pricing"
	"github.com/chocomania/backend/internal/domain/tracking"
	"github.com/chocomania/backend/internal/domain/user"
)

// Engine drives the order lifecycle: the cart-to-order transaction, payment
// confirmation, cancellation, fulfillment, and the attached tracking,
// document, and notification records.
type Engine struct {
	products      catalog.ProductRepository
	resolver      *pricing.Resolver
	carts         cart.Repository
	orders        Repository
	trackings     tracking.Repository
	documents     document.Repository
	notifications notification.Repository
	users         user.Repository
	email         notification.EmailSender
	now           func() time.Time
}

// NewEngine creates an Engine with the required domain dependencies.
func NewEngine(
	products catalog.ProductRepository,
	resolver *pricing.Resolver,
	carts cart.Repository,
	orders Repository,
	trackings tracking.Repository,
	documents document.Repository,
	notifications notification.Repository,
	users user.Repository,
	email notification.EmailSender,
) *Engine {
	return &Engine{
		products:      products,
		resolver:      resolver,
		carts:         carts,
		orders:        orders,
		trackings:     trackings,
		documents:     documents,
		notifications: notifications,
		users:         users,
		email:         email,
		now:           time.Now,
	}
}

// Checkout converts the user's cart into an order: validates every line,
// snapshots prices, persists the order with its lines, decrements stock,
// and clears the cart — all-or-nothing.
//
// The validation pass runs to completion before any mutation, so a cart
// that fails on its third line leaves no partial order behind. Each line's
// price is resolved exactly once and that value is both accumulated into
// the total and written to the line, so the persisted total always equals
// the sum of the persisted line prices.
func (e *Engine) Checkout(ctx context.Context, userID string) (*CheckoutResult, error) {
	c, err := e.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Validation + price snapshot. No writes happen in this loop.
	lines := make([]Line, 0, len(c.Items))
	total := decimal.Zero
	for _, item := range c.Items {
		p, err := e.products.GetByID(ctx, item.ProductoID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, &catalog.ProductUnavailableError{ProductID: item.ProductoID}
			}
			return nil, errors.Wrapf(err, "get product %s", item.ProductoID)
		}
		if !p.Available() {
			return nil, &catalog.ProductUnavailableError{ProductID: item.ProductoID}
		}
		if item.Cantidad > p.Stock {
			return nil, &catalog.InsufficientStockError{ProductID: item.ProductoID, Requested: item.Cantidad}
		}

		price, err := e.resolver.Resolve(ctx, *p)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			ProductoID:        item.ProductoID,
			Cantidad:          item.Cantidad,
			PrecioEnElMomento: price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}

	o := &Order{
		ID:            uuid.New().String(),
		UsuarioID:     userID,
		Total:         total,
		Estado:        StatusPendingPayment,
		FechaCreacion: e.now(),
		Lines:         lines,
	}
	if err := e.orders.CreateFromCart(ctx, o, c.ID); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Order:       o,
		RedirectURL: fmt.Sprintf("ConfirmacionPago.html?order_id=%s", o.ID),
	}, nil
}

// GetOwned returns an order if it exists and belongs to the user; otherwise
// ErrNotFound. Ownership failures are indistinguishable from missing orders
// on purpose.
func (e *Engine) GetOwned(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UsuarioID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListByUser returns all orders of a user, newest first.
func (e *Engine) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return e.orders.ListByUser(ctx, userID)
}

// Cancel moves an owned order to cancelado. It fails with ErrNotFound when
// the order is absent or not the caller's, and with IllegalTransitionError
// once the order has been dispatched, delivered, or is otherwise terminal.
func (e *Engine) Cancel(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := e.GetOwned(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !o.Estado.CanTransitionTo(StatusCancelled) {
		return nil, &IllegalTransitionError{From: o.Estado, To: StatusCancelled}
	}
	if err := e.orders.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Estado = StatusCancelled
	return o, nil
}
