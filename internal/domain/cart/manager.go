package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/domain/catalog"
	"github.com/chocomania/backend/internal/domain/pricing"
)

// Manager implements the cart operations: add with merge semantics, remove,
// clear, and promotional price preview.
type Manager struct {
	carts    Repository
	products catalog.ProductRepository
	resolver *pricing.Resolver
}

// NewManager creates a Manager with the required dependencies.
func NewManager(carts Repository, products catalog.ProductRepository, resolver *pricing.Resolver) *Manager {
	return &Manager{
		carts:    carts,
		products: products,
		resolver: resolver,
	}
}

// GetOrCreate returns the user's cart, creating it on first access.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*Cart, error) {
	return m.carts.GetOrCreate(ctx, userID)
}

// AddItem puts cantidad units of a product into the user's cart. When the
// product already has a line, the quantities are merged instead of adding a
// duplicate line. It fails with catalog.ErrProductNotFound when the product
// is missing or inactive, and with catalog.InsufficientStockError when the
// requested quantity exceeds stock.
func (m *Manager) AddItem(ctx context.Context, userID, productID string, cantidad int) (*Cart, error) {
	if cantidad < 1 {
		return nil, errors.New("la cantidad debe ser al menos 1")
	}

	c, err := m.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	p, err := m.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Available() {
		return nil, catalog.ErrProductNotFound
	}
	if cantidad > p.Stock {
		return nil, &catalog.InsufficientStockError{ProductID: productID, Requested: cantidad}
	}

	for i := range c.Items {
		if c.Items[i].ProductoID != productID {
			continue
		}
		merged := c.Items[i].Cantidad + cantidad
		if err := m.carts.UpdateItemQuantity(ctx, c.Items[i].ID, merged); err != nil {
			return nil, errors.Wrap(err, "merge cart line")
		}
		c.Items[i].Cantidad = merged
		return c, nil
	}

	item := &Item{
		ID:         uuid.New().String(),
		ProductoID: productID,
		Cantidad:   cantidad,
	}
	if err := m.carts.InsertItem(ctx, c.ID, item); err != nil {
		return nil, errors.Wrap(err, "insert cart line")
	}
	c.Items = append(c.Items, *item)
	return c, nil
}

// RemoveItem deletes one line from the user's cart. It fails with
// ErrItemNotFound when the user has no cart or the line is not theirs.
func (m *Manager) RemoveItem(ctx context.Context, userID, itemID string) (*Cart, error) {
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil {
		return nil, ErrItemNotFound
	}
	if err := m.carts.RemoveItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	items := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	c.Items = items
	return c, nil
}

// Clear removes every line from the user's cart. Clearing a missing or
// already-empty cart succeeds.
func (m *Manager) Clear(ctx context.Context, userID string) error {
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "get cart")
	}
	if c == nil {
		return nil
	}
	return m.carts.Clear(ctx, c.ID)
}

// ComputeTotal previews the cart total with current promotional prices.
// Lines whose product is missing or inactive contribute nothing to the
// total but stay in the cart.
func (m *Manager) ComputeTotal(ctx context.Context, c *Cart) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range c.Items {
		p, err := m.products.GetByID(ctx, item.ProductoID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				continue
			}
			return decimal.Zero, errors.Wrapf(err, "get product %s", item.ProductoID)
		}
		if !p.Available() {
			continue
		}
		price, err := m.resolver.Resolve(ctx, *p)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}
	return total, nil
}
