package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT id, nombre, descripcion, precio, tipo, stock, activo
		FROM productos WHERE activo ORDER BY nombre`

	listProductsByTipoSQL = `SELECT id, nombre, descripcion, precio, tipo, stock, activo
		FROM productos WHERE activo AND tipo = $1 ORDER BY nombre`

	getProductByIDSQL = `SELECT id, nombre, descripcion, precio, tipo, stock, activo
		FROM productos WHERE id = $1`

	createProductSQL = `INSERT INTO productos (id, nombre, descripcion, precio, tipo, stock, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateProductSQL = `UPDATE productos
		SET nombre = $2, descripcion = $3, precio = $4, tipo = $5, stock = $6, activo = $7
		WHERE id = $1`
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by
// PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns active products, optionally filtered by tipo.
func (r *ProductRepository) List(ctx context.Context, tipo string) ([]catalog.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if tipo == "" {
		rows, err = r.pool.Query(ctx, listProductsSQL)
	} else {
		rows, err = r.pool.Query(ctx, listProductsByTipoSQL, tipo)
	}
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier, active or not.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Nombre, p.Descripcion, p.Precio, p.Tipo, p.Stock, p.Activo,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update rewrites all mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Nombre, p.Descripcion, p.Precio, p.Tipo, p.Stock, p.Activo,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Tipo, &p.Stock, &p.Activo)
	return p, err
}
