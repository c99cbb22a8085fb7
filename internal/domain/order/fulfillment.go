package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/chocomania/backend/internal/domain/notification"
	"github.com/chocomania/backend/internal/domain/tracking"
	"github.com/chocomania/backend/internal/domain/user"
)

// MarkPreparing moves a paid order into preparation.
func (e *Engine) MarkPreparing(ctx context.Context, orderID string) (*Order, error) {
	return e.transition(ctx, orderID, StatusPreparing)
}

// AssignCourier records a courier on the order's tracking (creating the
// record if payment confirmation did not, e.g. after a manual fix) and
// dispatches the order. It fails with ErrCourierNotFound when the target
// user is missing or lacks the repartidor role.
func (e *Engine) AssignCourier(ctx context.Context, orderID, courierID string) (*Order, error) {
	courier, err := e.users.GetByID(ctx, courierID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrCourierNotFound
		}
		return nil, errors.Wrap(err, "get courier")
	}
	if courier.Rol != user.RoleRepartidor {
		return nil, ErrCourierNotFound
	}

	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Estado.CanTransitionTo(StatusDispatched) {
		return nil, &IllegalTransitionError{From: o.Estado, To: StatusDispatched}
	}

	trk, err := e.ensureTracking(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if err := e.trackings.AssignCourier(ctx, trk.ID, courier.Email); err != nil {
		return nil, errors.Wrap(err, "assign courier")
	}
	if err := e.orders.UpdateStatus(ctx, o.ID, StatusDispatched); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Estado = StatusDispatched

	e.appendNotification(ctx, o.ID, notification.KindOrderDispatched, trk.HoraEstimadaLlegada, "")
	return o, nil
}

// MarkDispatched moves an order to despachado without changing the courier
// assignment.
func (e *Engine) MarkDispatched(ctx context.Context, orderID string) (*Order, error) {
	o, err := e.transition(ctx, orderID, StatusDispatched)
	if err != nil {
		return nil, err
	}
	trk, err := e.ensureTracking(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	e.appendNotification(ctx, o.ID, notification.KindOrderDispatched, trk.HoraEstimadaLlegada, "")
	return o, nil
}

// MarkDelivered confirms delivery: the tracking record becomes entregado
// with its coordinates cleared, and the order becomes entregado, in one
// atomic unit. It fails with tracking.ErrAlreadyDelivered on repeat calls.
func (e *Engine) MarkDelivered(ctx context.Context, orderID string) (*tracking.Tracking, error) {
	trk, err := e.trackings.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if trk.Estado == tracking.StatusDelivered {
		return nil, tracking.ErrAlreadyDelivered
	}
	if err := e.orders.Deliver(ctx, orderID); err != nil {
		return nil, err
	}
	trk.Estado = tracking.StatusDelivered
	trk.Lat, trk.Lng = nil, nil
	return trk, nil
}

// Track returns the delivery progress of an owned order. While the order is
// en route each call re-randomizes the simulated position and persists it.
func (e *Engine) Track(ctx context.Context, orderID, userID string) (*tracking.Tracking, error) {
	if _, err := e.GetOwned(ctx, orderID, userID); err != nil {
		return nil, err
	}
	trk, err := e.trackings.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if trk.Estado == tracking.StatusEnRoute {
		lat, lng := tracking.RandomPosition()
		if err := e.trackings.UpdatePosition(ctx, trk.ID, lat, lng); err != nil {
			return nil, errors.Wrap(err, "update position")
		}
		trk.Lat, trk.Lng = &lat, &lng
	}
	return trk, nil
}

// transition applies a plain status change after checking the state machine.
func (e *Engine) transition(ctx context.Context, orderID string, next Status) (*Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Estado.CanTransitionTo(next) {
		return nil, &IllegalTransitionError{From: o.Estado, To: next}
	}
	if err := e.orders.UpdateStatus(ctx, o.ID, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Estado = next
	return o, nil
}

// ensureTracking returns the order's tracking record, creating a fresh
// en-route one when absent.
func (e *Engine) ensureTracking(ctx context.Context, orderID string) (*tracking.Tracking, error) {
	trk, err := e.trackings.GetByOrderID(ctx, orderID)
	if err == nil {
		return trk, nil
	}
	if !errors.Is(err, tracking.ErrNotFound) {
		return nil, errors.Wrap(err, "get tracking")
	}
	trk = &tracking.Tracking{
		ID:                  uuid.New().String(),
		PedidoID:            orderID,
		Estado:              tracking.StatusEnRoute,
		HoraEstimadaLlegada: e.now().Add(time.Hour).UTC().Format("15:04:05"),
	}
	if err := e.trackings.Create(ctx, trk); err != nil {
		return nil, errors.Wrap(err, "create tracking")
	}
	return trk, nil
}
