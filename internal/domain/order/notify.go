package order

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chocomania/backend/internal/domain/notification"
)

// Notify appends a lifecycle notification to an order's log on request
// (the explicit notification endpoint). Dispatch notifications pick up the
// tracking ETA when one exists.
func (e *Engine) Notify(ctx context.Context, orderID string, kind notification.Kind, extra string) (*notification.Notification, error) {
	if _, err := e.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	eta := ""
	if kind == notification.KindOrderDispatched {
		if trk, err := e.trackings.GetByOrderID(ctx, orderID); err == nil {
			eta = trk.HoraEstimadaLlegada
		}
	}

	n := &notification.Notification{
		ID:           uuid.New().String(),
		PedidoID:     orderID,
		Tipo:         kind,
		Mensaje:      notification.Compose(orderID, kind, eta, extra),
		HoraEstimada: eta,
		FechaEnvio:   e.now(),
	}
	if err := e.notifications.Append(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNotification rewrites the latest notification of an order, used to
// push delay messages with a fresh ETA.
func (e *Engine) UpdateNotification(ctx context.Context, orderID, mensaje, horaEstimada string) (*notification.Notification, error) {
	return e.notifications.UpdateLatest(ctx, orderID, mensaje, horaEstimada)
}

// appendNotification is the fire-and-forget variant used on state
// transitions; failures are logged, never propagated.
func (e *Engine) appendNotification(ctx context.Context, orderID string, kind notification.Kind, eta, extra string) {
	n := &notification.Notification{
		ID:           uuid.New().String(),
		PedidoID:     orderID,
		Tipo:         kind,
		Mensaje:      notification.Compose(orderID, kind, eta, extra),
		HoraEstimada: eta,
		FechaEnvio:   e.now(),
	}
	if err := e.notifications.Append(ctx, n); err != nil {
		zctx.From(ctx).Warn("Notification append failed",
			zap.String("order_id", orderID), zap.String("kind", string(kind)), zap.Error(err))
	}
}
