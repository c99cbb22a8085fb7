package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocomania/backend/internal/domain/cart"
)

const (
	getCartSQL = `SELECT id, usuario_id FROM carritos WHERE usuario_id = $1`

	// ON CONFLICT keeps GetOrCreate race-free under concurrent first access.
	insertCartSQL = `INSERT INTO carritos (id, usuario_id) VALUES ($1, $2)
		ON CONFLICT (usuario_id) DO NOTHING`

	listCartItemsSQL = `SELECT id, producto_id, cantidad FROM carrito_items
		WHERE carrito_id = $1 ORDER BY id`

	insertCartItemSQL = `INSERT INTO carrito_items (id, carrito_id, producto_id, cantidad)
		VALUES ($1, $2, $3, $4)`

	updateCartItemSQL = `UPDATE carrito_items SET cantidad = $2 WHERE id = $1`

	removeCartItemSQL = `DELETE FROM carrito_items WHERE carrito_id = $1 AND id = $2`

	clearCartSQL = `DELETE FROM carrito_items WHERE carrito_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetOrCreate returns the user's cart with its items, creating the row on
// first access.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	if _, err := r.pool.Exec(ctx, insertCartSQL, uuid.New().String(), userID); err != nil {
		return nil, fmt.Errorf("creating cart for user %q: %w", userID, err)
	}
	// Re-read so a concurrent creator's row wins consistently.
	c, err = r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cart for user %q vanished after insert", userID)
	}
	return c, nil
}

// Get returns the user's cart with items, or nil when the user never had
// one.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	var c cart.Cart
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&c.ID, &c.UsuarioID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	rows, err := r.pool.Query(ctx, listCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}
	c.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var it cart.Item
		err := row.Scan(&it.ID, &it.ProductoID, &it.Cantidad)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning cart items: %w", err)
	}
	return &c, nil
}

// InsertItem adds a new line to the cart.
func (r *CartRepository) InsertItem(ctx context.Context, cartID string, item *cart.Item) error {
	_, err := r.pool.Exec(ctx, insertCartItemSQL, item.ID, cartID, item.ProductoID, item.Cantidad)
	if err != nil {
		return fmt.Errorf("inserting cart item: %w", err)
	}
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID string, cantidad int) error {
	tag, err := r.pool.Exec(ctx, updateCartItemSQL, itemID, cantidad)
	if err != nil {
		return fmt.Errorf("updating cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// RemoveItem deletes a line from the given cart.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, cartID, itemID)
	if err != nil {
		return fmt.Errorf("removing cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear removes all lines of a cart.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, cartID); err != nil {
		return fmt.Errorf("clearing cart %q: %w", cartID, err)
	}
	return nil
}
