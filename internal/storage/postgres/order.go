package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/catalog"
	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/order"
	"github.com/chocomania/backend/internal/domain/tracking"
)

const (
	createOrderSQL = `INSERT INTO pedidos (id, usuario_id, total, estado, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5)`

	createOrderItemSQL = `INSERT INTO pedido_items (pedido_id, producto_id, cantidad, precio_en_el_momento)
		VALUES ($1, $2, $3, $4)`

	// The guard makes concurrent checkouts of the last unit serialize:
	// whoever matches the row wins, the other matches nothing and aborts.
	decrementStockSQL = `UPDATE productos SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	getOrderSQL = `SELECT id, usuario_id, total, estado, fecha_creacion
		FROM pedidos WHERE id = $1`

	listOrderItemsSQL = `SELECT producto_id, cantidad, precio_en_el_momento
		FROM pedido_items WHERE pedido_id = $1 ORDER BY producto_id`

	listOrdersByUserSQL = `SELECT id, usuario_id, total, estado, fecha_creacion
		FROM pedidos WHERE usuario_id = $1 ORDER BY fecha_creacion DESC`

	updateOrderStatusSQL = `UPDATE pedidos SET estado = $2 WHERE id = $1`

	deliverTrackingSQL = `UPDATE seguimientos
		SET estado = 'entregado', lat = NULL, lng = NULL WHERE pedido_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// multi-row operations run in a single transaction each.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateFromCart persists the order with its lines, decrements stock with a
// guarded update per line, and clears the source cart. Any failing guard
// rolls everything back with catalog.InsufficientStockError.
func (r *OrderRepository) CreateFromCart(ctx context.Context, o *order.Order, cartID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, createOrderSQL,
		o.ID, o.UsuarioID, o.Total, o.Estado, o.FechaCreacion,
	); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, line := range o.Lines {
		if _, err := tx.Exec(ctx, createOrderItemSQL,
			o.ID, line.ProductoID, line.Cantidad, line.PrecioEnElMomento,
		); err != nil {
			return fmt.Errorf("creating order line %q: %w", line.ProductoID, err)
		}

		tag, err := tx.Exec(ctx, decrementStockSQL, line.ProductoID, line.Cantidad)
		if err != nil {
			return fmt.Errorf("decrementing stock of %q: %w", line.ProductoID, err)
		}
		if tag.RowsAffected() == 0 {
			return &catalog.InsufficientStockError{ProductID: line.ProductoID, Requested: line.Cantidad}
		}
	}

	if _, err := tx.Exec(ctx, clearCartSQL, cartID); err != nil {
		return fmt.Errorf("clearing cart %q: %w", cartID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout: %w", err)
	}
	return nil
}

// GetByID returns the order with its lines, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, listOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing order lines: %w", err)
	}
	o.Lines, err = pgx.CollectRows(itemRows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("scanning order lines: %w", err)
	}
	return &o, nil
}

// ListByUser returns a user's orders newest first, without lines.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus rewrites the order's estado.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, st order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, st)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ConfirmPayment moves the order to pagado and creates its document and
// tracking record in one transaction.
func (r *OrderRepository) ConfirmPayment(ctx context.Context, orderID string, doc *document.Document, trk *tracking.Tracking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting payment transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, updateOrderStatusSQL, orderID, order.StatusPaid)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if _, err := tx.Exec(ctx, createDocumentSQL,
		doc.ID, doc.PedidoID, doc.Fecha, doc.Tipo, doc.Total, doc.Rut, doc.RazonSocial,
	); err != nil {
		return fmt.Errorf("creating document: %w", err)
	}

	if _, err := tx.Exec(ctx, createTrackingSQL,
		trk.ID, trk.PedidoID, trk.Estado, trk.HoraEstimadaLlegada, trk.RepartidorAsignado, trk.Lat, trk.Lng,
	); err != nil {
		return fmt.Errorf("creating tracking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing payment: %w", err)
	}
	return nil
}

// Deliver marks the tracking record entregado with cleared coordinates and
// the order entregado, in one transaction.
func (r *OrderRepository) Deliver(ctx context.Context, orderID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting delivery transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, deliverTrackingSQL, orderID); err != nil {
		return fmt.Errorf("delivering tracking of order %q: %w", orderID, err)
	}

	tag, err := tx.Exec(ctx, updateOrderStatusSQL, orderID, order.StatusDelivered)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delivery: %w", err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UsuarioID, &o.Total, &o.Estado, &o.FechaCreacion)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ProductoID, &l.Cantidad, &l.PrecioEnElMomento)
	return l, err
}
