package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order operations.
var (
	// ErrNotFound is returned when an order is absent or not owned by the
	// caller.
	ErrNotFound = errors.New("pedido no encontrado")
	// ErrEmptyCart is returned when checkout is attempted on a cart with no
	// lines.
	ErrEmptyCart = errors.New("el carrito está vacío")
	// ErrAlreadyProcessed is returned by payment confirmation once the order
	// has left pendiente_de_pago. Duplicate gateway callbacks are expected;
	// callers should treat this as a benign outcome, not a failure.
	ErrAlreadyProcessed = errors.New("el pago ya fue procesado")
	// ErrCourierNotFound is returned when the target of a courier assignment
	// does not exist or lacks the repartidor role.
	ErrCourierNotFound = errors.New("repartidor no encontrado")
)

// IllegalTransitionError indicates a state change the lifecycle forbids.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transición ilegal de pedido: %s → %s", e.From, e.To)
}
