package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/tracking"
)

const (
	getTrackingSQL = `SELECT id, pedido_id, estado, COALESCE(hora_estimada_llegada, ''),
			COALESCE(repartidor_asignado, ''), lat, lng
		FROM seguimientos WHERE pedido_id = $1`

	createTrackingSQL = `INSERT INTO seguimientos (id, pedido_id, estado, hora_estimada_llegada, repartidor_asignado, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateTrackingPositionSQL = `UPDATE seguimientos SET lat = $2, lng = $3 WHERE id = $1`

	assignCourierSQL = `UPDATE seguimientos SET repartidor_asignado = $2 WHERE id = $1`
)

var _ tracking.Repository = (*TrackingRepository)(nil)

// TrackingRepository implements tracking.Repository backed by PostgreSQL.
type TrackingRepository struct {
	pool *pgxpool.Pool
}

// NewTrackingRepository returns a TrackingRepository that uses the given
// pool.
func NewTrackingRepository(pool *pgxpool.Pool) *TrackingRepository {
	return &TrackingRepository{pool: pool}
}

// GetByOrderID returns the order's tracking record, or tracking.ErrNotFound.
func (r *TrackingRepository) GetByOrderID(ctx context.Context, orderID string) (*tracking.Tracking, error) {
	var t tracking.Tracking
	err := r.pool.QueryRow(ctx, getTrackingSQL, orderID).Scan(
		&t.ID, &t.PedidoID, &t.Estado, &t.HoraEstimadaLlegada,
		&t.RepartidorAsignado, &t.Lat, &t.Lng,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracking.ErrNotFound
		}
		return nil, fmt.Errorf("getting tracking of order %q: %w", orderID, err)
	}
	return &t, nil
}

// Create persists a new tracking record.
func (r *TrackingRepository) Create(ctx context.Context, t *tracking.Tracking) error {
	_, err := r.pool.Exec(ctx, createTrackingSQL,
		t.ID, t.PedidoID, t.Estado, t.HoraEstimadaLlegada, t.RepartidorAsignado, t.Lat, t.Lng,
	)
	if err != nil {
		return fmt.Errorf("creating tracking %q: %w", t.ID, err)
	}
	return nil
}

// UpdatePosition persists a fresh simulated position.
func (r *TrackingRepository) UpdatePosition(ctx context.Context, id string, lat, lng float64) error {
	tag, err := r.pool.Exec(ctx, updateTrackingPositionSQL, id, lat, lng)
	if err != nil {
		return fmt.Errorf("updating position of tracking %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return tracking.ErrNotFound
	}
	return nil
}

// AssignCourier records the courier on the tracking row.
func (r *TrackingRepository) AssignCourier(ctx context.Context, id, courier string) error {
	tag, err := r.pool.Exec(ctx, assignCourierSQL, id, courier)
	if err != nil {
		return fmt.Errorf("assigning courier on tracking %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return tracking.ErrNotFound
	}
	return nil
}
