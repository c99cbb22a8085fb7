package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/notification"
)

const (
	appendNotificationSQL = `INSERT INTO notificaciones (id, pedido_id, tipo, mensaje, hora_estimada, fecha_envio)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listNotificationsSQL = `SELECT id, pedido_id, tipo, mensaje, COALESCE(hora_estimada, ''), fecha_envio
		FROM notificaciones WHERE pedido_id = $1 ORDER BY fecha_envio`

	// Rewrites the most recent entry of the order; COALESCE keeps the old
	// ETA when the caller passes none.
	updateLatestNotificationSQL = `UPDATE notificaciones
		SET mensaje = $2, hora_estimada = COALESCE(NULLIF($3, ''), hora_estimada)
		WHERE id = (
			SELECT id FROM notificaciones WHERE pedido_id = $1
			ORDER BY fecha_envio DESC LIMIT 1
		)
		RETURNING id, pedido_id, tipo, mensaje, COALESCE(hora_estimada, ''), fecha_envio`
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository backed by
// PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the
// given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Append adds one entry to the order's notification log.
func (r *NotificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, appendNotificationSQL,
		n.ID, n.PedidoID, n.Tipo, n.Mensaje, n.HoraEstimada, n.FechaEnvio,
	)
	if err != nil {
		return fmt.Errorf("appending notification %q: %w", n.ID, err)
	}
	return nil
}

// ListByOrder returns the order's notifications oldest first.
func (r *NotificationRepository) ListByOrder(ctx context.Context, orderID string) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx, listNotificationsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications of order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanNotification)
}

// UpdateLatest rewrites the most recent notification of an order.
func (r *NotificationRepository) UpdateLatest(ctx context.Context, orderID, mensaje, horaEstimada string) (*notification.Notification, error) {
	rows, err := r.pool.Query(ctx, updateLatestNotificationSQL, orderID, mensaje, horaEstimada)
	if err != nil {
		return nil, fmt.Errorf("updating latest notification of order %q: %w", orderID, err)
	}
	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNoneForOrder
		}
		return nil, fmt.Errorf("updating latest notification of order %q: %w", orderID, err)
	}
	return &n, nil
}

func scanNotification(row pgx.CollectableRow) (notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(&n.ID, &n.PedidoID, &n.Tipo, &n.Mensaje, &n.HoraEstimada, &n.FechaEnvio)
	return n, err
}
