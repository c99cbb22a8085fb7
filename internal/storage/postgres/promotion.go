package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/catalog"
)

const (
	createPromotionSQL = `INSERT INTO promociones (id, producto_id, precio_oferta, fecha_inicio, fecha_termino, activo)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listActivePromotionsSQL = `SELECT id, producto_id, precio_oferta, fecha_inicio, fecha_termino, activo
		FROM promociones WHERE activo AND fecha_termino > $1 ORDER BY fecha_termino`

	findBestActivePromotionSQL = `SELECT id, producto_id, precio_oferta, fecha_inicio, fecha_termino, activo
		FROM promociones
		WHERE producto_id = $1 AND activo AND fecha_termino > $2
		ORDER BY precio_oferta ASC LIMIT 1`
)

var _ catalog.PromotionRepository = (*PromotionRepository)(nil)

// PromotionRepository implements catalog.PromotionRepository backed by
// PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given
// pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// Create persists a new promotion.
func (r *PromotionRepository) Create(ctx context.Context, p *catalog.Promotion) error {
	_, err := r.pool.Exec(ctx, createPromotionSQL,
		p.ID, p.ProductoID, p.PrecioOferta, p.FechaInicio, p.FechaTermino, p.Activo,
	)
	if err != nil {
		return fmt.Errorf("creating promotion %q: %w", p.ID, err)
	}
	return nil
}

// ListActive returns all promotions applicable at the given instant.
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]catalog.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// FindBestActive returns the applicable promotion with the lowest offer
// price, or nil when none applies.
func (r *PromotionRepository) FindBestActive(ctx context.Context, productID string, now time.Time) (*catalog.Promotion, error) {
	rows, err := r.pool.Query(ctx, findBestActivePromotionSQL, productID, now)
	if err != nil {
		return nil, fmt.Errorf("finding promotion for product %q: %w", productID, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding promotion for product %q: %w", productID, err)
	}
	return &p, nil
}

func scanPromotion(row pgx.CollectableRow) (catalog.Promotion, error) {
	var p catalog.Promotion
	err := row.Scan(&p.ID, &p.ProductoID, &p.PrecioOferta, &p.FechaInicio, &p.FechaTermino, &p.Activo)
	return p, err
}
