// Package notification keeps the append-only log of lifecycle events per
// order and the outbound email sink.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Kind classifies a lifecycle notification.
type Kind string

const (
	KindOrderReceived   Kind = "pedido_recibido"
	KindOrderDispatched Kind = "pedido_despachado"
	KindDeliveryDelay   Kind = "retraso_entrega"
)

// ErrNoneForOrder is returned when an order has no notifications to update.
var ErrNoneForOrder = errors.New("no hay notificaciones para este pedido")

// Notification is one append-only log entry tied to an order.
type Notification struct {
	ID           string
	PedidoID     string
	Tipo         Kind
	Mensaje      string
	HoraEstimada string
	FechaEnvio   time.Time
}

// Compose builds the user-facing message for a lifecycle event. etaHint is
// the estimated arrival for dispatch events; extra is an optional free-form
// suffix for delay events.
func Compose(orderID string, kind Kind, etaHint, extra string) string {
	switch kind {
	case KindOrderDispatched:
		if etaHint != "" {
			return fmt.Sprintf("Tu pedido %s ha sido despachado. Llegada estimada: %s.", orderID, etaHint)
		}
		return fmt.Sprintf("Tu pedido %s ha sido despachado.", orderID)
	case KindDeliveryDelay:
		msg := fmt.Sprintf("Tu pedido %s sufrirá un retraso.", orderID)
		if extra != "" {
			msg += " " + extra
		}
		return msg
	default:
		return fmt.Sprintf("Tu pedido %s ha sido recibido.", orderID)
	}
}

// Repository defines persistence operations for the notification log.
type Repository interface {
	Append(ctx context.Context, n *Notification) error
	ListByOrder(ctx context.Context, orderID string) ([]Notification, error)
	// UpdateLatest rewrites the message (and optionally the ETA) of the most
	// recent notification of an order. Returns ErrNoneForOrder when the
	// order has no notifications.
	UpdateLatest(ctx context.Context, orderID, mensaje, horaEstimada string) (*Notification, error)
}
