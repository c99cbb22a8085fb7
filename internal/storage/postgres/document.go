package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/document"
)

const (
	getDocumentSQL = `SELECT id, pedido_id, fecha, tipo, total, COALESCE(rut, ''), COALESCE(razon_social, '')
		FROM documentos WHERE pedido_id = $1`

	createDocumentSQL = `INSERT INTO documentos (id, pedido_id, fecha, tipo, total, rut, razon_social)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	upgradeDocumentSQL = `UPDATE documentos
		SET tipo = 'factura', rut = $2, razon_social = $3 WHERE id = $1`
)

var _ document.Repository = (*DocumentRepository)(nil)

// DocumentRepository implements document.Repository backed by PostgreSQL.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository returns a DocumentRepository that uses the given
// pool.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// GetByOrderID returns the order's document, or document.ErrNotFound.
func (r *DocumentRepository) GetByOrderID(ctx context.Context, orderID string) (*document.Document, error) {
	var d document.Document
	err := r.pool.QueryRow(ctx, getDocumentSQL, orderID).Scan(
		&d.ID, &d.PedidoID, &d.Fecha, &d.Tipo, &d.Total, &d.Rut, &d.RazonSocial,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrNotFound
		}
		return nil, fmt.Errorf("getting document of order %q: %w", orderID, err)
	}
	return &d, nil
}

// Create persists a new document.
func (r *DocumentRepository) Create(ctx context.Context, d *document.Document) error {
	_, err := r.pool.Exec(ctx, createDocumentSQL,
		d.ID, d.PedidoID, d.Fecha, d.Tipo, d.Total, d.Rut, d.RazonSocial,
	)
	if err != nil {
		return fmt.Errorf("creating document %q: %w", d.ID, err)
	}
	return nil
}

// UpgradeToInvoice converts the document to a factura in place.
func (r *DocumentRepository) UpgradeToInvoice(ctx context.Context, id, rut, razonSocial string) error {
	tag, err := r.pool.Exec(ctx, upgradeDocumentSQL, id, rut, razonSocial)
	if err != nil {
		return fmt.Errorf("upgrading document %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}
